package vastdb

import (
	"unicode/utf8"

	"github.com/vast-data/vastdb-go/errors"
)

// KeyRange is a half-open byte interval [Lower, Upper) used as prefix-scan
// bounds: inclusive lower, exclusive upper.
type KeyRange struct {
	Lower []byte
	Upper []byte
}

// PrefixToRange returns the tightest KeyRange covering exactly the strings
// that begin with prefix.
//
// Lower is the prefix's own encoding. Upper is the smallest byte string
// not covered by the prefix: the prefix with its final character replaced
// by its successor. When the successor's encoding would have a different
// length than the final character's (or the final character is already the
// maximum code point), the increment is done at the byte level instead,
// with the carry propagating leftward, which keeps the bound both valid
// and tight.
//
// An empty prefix fails with ErrInvalidRange: such a range would have to
// run from b"" to infinity and has no finite exclusive upper bound.
func PrefixToRange(prefix string) (KeyRange, error) {
	if prefix == "" {
		return KeyRange{}, errors.New(ErrInvalidRange, "prefix must be non-empty")
	}
	lower := []byte(prefix)

	last, size := utf8.DecodeLastRuneInString(prefix)
	next := last + 1
	if last != utf8.RuneError && utf8.ValidRune(next) && utf8.RuneLen(next) == size {
		upper := make([]byte, len(lower))
		copy(upper, lower)
		utf8.EncodeRune(upper[len(upper)-size:], next)
		return KeyRange{Lower: lower, Upper: upper}, nil
	}

	upper, err := incrementBytes(lower)
	if err != nil {
		return KeyRange{}, err
	}
	return KeyRange{Lower: lower, Upper: upper}, nil
}

// incrementBytes returns the successor of b for prefix purposes: the last
// byte below 0xff is incremented and everything after it dropped. Valid
// UTF-8 never contains 0xff, so for string prefixes this touches only the
// final byte.
func incrementBytes(b []byte) ([]byte, error) {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] == 0xff {
			continue
		}
		out := make([]byte, i+1)
		copy(out, b[:i+1])
		out[i]++
		return out, nil
	}
	return nil, errors.New(ErrInvalidRange, "prefix has no finite upper bound")
}
