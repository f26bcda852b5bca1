// Package net holds the endpoint address types used when connecting to a
// cluster: a small URI type and the expansion of compact address-range
// specifications into concrete per-node addresses.
package net

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	schemeRegexp  = regexp.MustCompile("^[+a-z]+$")
	hostRegexp    = regexp.MustCompile(`^[0-9a-z.-]+$|^\[[:0-9a-fA-F]+\]$`)
	addressRegexp = regexp.MustCompile(`^(([+a-z]+):\/\/)?([0-9a-z.-]+|\[[:0-9a-fA-F]+\])?(:([0-9]+))?$`)

	// ipRangeRegexp matches endpoint addresses whose final IPv4 octet is an
	// inclusive range, e.g. "http://172.19.101.1-16".
	ipRangeRegexp = regexp.MustCompile(`^(http://\d+\.\d+\.\d+)\.(\d+)-(\d+)$`)

	ErrInvalidAddress = errors.New("invalid address")
	ErrInvalidScheme  = errors.New("invalid scheme")
)

// URI represents one endpoint address of a cluster.
// A URI consists of three parts:
// 1) Scheme: Protocol of the URI. Default: http.
// 2) Host: Hostname or IP address. Default: localhost. IPv6 addresses should be written in brackets.
// 3) Port: Port of the URI. Default: 80.
//
// All parts of the URI are optional. The following are equivalent:
//	http://localhost:80
//	http://localhost
//	http://:80
//	localhost:80
//	localhost
//	:80
type URI struct {
	Scheme string `json:"scheme"`
	Host   string `json:"host"`
	Port   uint16 `json:"port"`
}

// DefaultURI creates and returns the default URI.
func DefaultURI() *URI {
	return &URI{
		Scheme: "http",
		Host:   "localhost",
		Port:   80,
	}
}

// NewURIFromAddress parses the passed address and returns a URI.
func NewURIFromAddress(address string) (*URI, error) {
	return parseAddress(address)
}

// NewURIFromHostPort returns a URI with specified host and port.
func NewURIFromHostPort(host string, port uint16) (*URI, error) {
	uri := DefaultURI()
	if err := uri.SetHost(host); err != nil {
		return nil, errors.Wrap(err, "setting uri host")
	}
	uri.Port = port
	return uri, nil
}

// SetScheme sets the scheme of this URI.
func (u *URI) SetScheme(scheme string) error {
	if m := schemeRegexp.FindStringSubmatch(scheme); m == nil {
		return ErrInvalidScheme
	}
	u.Scheme = scheme
	return nil
}

// SetHost sets the host of this URI.
func (u *URI) SetHost(host string) error {
	if m := hostRegexp.FindStringSubmatch(host); m == nil {
		return errors.New("invalid host")
	}
	u.Host = host
	return nil
}

// HostPort returns `Host:Port`.
func (u *URI) HostPort() string {
	return fmt.Sprintf("%s:%d", u.Host, u.Port)
}

// URL returns a url.URL representation of the URI.
func (u *URI) URL() url.URL {
	return url.URL{Scheme: u.Scheme, Host: net.JoinHostPort(u.Host, strconv.Itoa(int(u.Port)))}
}

// Normalize returns the address in a form usable by a HTTP client.
func (u *URI) Normalize() string {
	scheme := u.Scheme
	if index := strings.Index(scheme, "+"); index >= 0 {
		scheme = scheme[:index]
	}
	return fmt.Sprintf("%s://%s:%d", scheme, u.Host, u.Port)
}

// Path returns the URI with path appended.
func (u *URI) Path(path string) string {
	return fmt.Sprintf("%s%s", u.Normalize(), path)
}

// Equals returns true if the checked URI is equivalent to this URI.
func (u URI) Equals(other *URI) bool {
	if other == nil {
		return false
	}
	return u.Scheme == other.Scheme &&
		u.Host == other.Host &&
		u.Port == other.Port
}

// String returns the address as a string.
func (u URI) String() string {
	return fmt.Sprintf("%s://%s:%d", u.Scheme, u.Host, u.Port)
}

func parseAddress(address string) (uri *URI, err error) {
	m := addressRegexp.FindStringSubmatch(address)
	if m == nil {
		return nil, ErrInvalidAddress
	}
	scheme := "http"
	if m[2] != "" {
		scheme = m[2]
	}
	host := "localhost"
	if m[3] != "" {
		host = m[3]
	}
	var port = 80
	if m[5] != "" {
		port, err = strconv.Atoi(m[5])
		if err != nil {
			return nil, errors.New("converting port string to int")
		}
		if port > 65535 {
			return nil, errors.New("port must be in range 0 - 65535")
		}
	}
	uri = &URI{
		Scheme: scheme,
		Host:   host,
		Port:   uint16(port),
	}
	return uri, nil
}

// ExpandAddresses expands endpoint addresses whose final IPv4 octet is an
// inclusive "first-last" range into one address per integer in the range,
// in ascending order. Addresses without a range token pass through
// unchanged. Output order follows input order.
func ExpandAddresses(addresses []string) ([]string, error) {
	expanded := make([]string, 0, len(addresses))
	for _, address := range addresses {
		m := ipRangeRegexp.FindStringSubmatch(address)
		if m == nil {
			expanded = append(expanded, address)
			continue
		}
		base := m[1]
		first, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, errors.Wrapf(err, "parsing range start in %q", address)
		}
		last, err := strconv.Atoi(m[3])
		if err != nil {
			return nil, errors.Wrapf(err, "parsing range end in %q", address)
		}
		if first > last {
			return nil, errors.Errorf("start IP cannot be greater than end IP in the range %q", address)
		}
		for ip := first; ip <= last; ip++ {
			expanded = append(expanded, fmt.Sprintf("%s.%d", base, ip))
		}
	}
	return expanded, nil
}
