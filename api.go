package vastdb

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	awssession "github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/vast-data/vastdb-go/errors"
	"github.com/vast-data/vastdb-go/logger"
	vnet "github.com/vast-data/vastdb-go/net"
)

// Transport performs the transaction verbs against one endpoint. Request
// framing beyond these verbs is not this layer's business.
type Transport interface {
	BeginTransaction(ctx context.Context) (uint64, error)
	CommitTransaction(ctx context.Context, txid uint64) error
	RollbackTransaction(ctx context.Context, txid uint64) error
}

// ObjectStore exposes the bucket existence/permission check used to
// resolve bucket names.
type ObjectStore interface {
	HeadBucket(ctx context.Context, name string) error
}

const (
	// txidHeader carries the transaction id on every transaction verb.
	txidHeader = "tabular-txid"

	transactionPath = "/?transaction"
)

// httpTransport speaks the transaction verbs over HTTP. Connection-level
// retries with exponential backoff happen inside the retryablehttp client
// per the session's BackoffConfig; nothing above this layer retries.
type httpTransport struct {
	endpoint *vnet.URI
	client   *retryablehttp.Client
}

var _ Transport = (*httpTransport)(nil)

func newHTTPTransport(endpoint *vnet.URI, backoff BackoffConfig, log logger.Logger) *httpTransport {
	client := retryablehttp.NewClient()
	client.RetryMax = backoff.MaxRetries
	client.RetryWaitMin = backoff.MinBackoff
	client.RetryWaitMax = backoff.MaxBackoff
	client.Logger = log
	return &httpTransport{
		endpoint: endpoint,
		client:   client,
	}
}

func (t *httpTransport) BeginTransaction(ctx context.Context) (uint64, error) {
	resp, err := t.exchange(ctx, http.MethodPost, 0)
	if err != nil {
		return 0, errors.Wrap(err, "beginning transaction")
	}
	defer resp.Body.Close()

	txid, err := strconv.ParseUint(resp.Header.Get(txidHeader), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %s response header", txidHeader)
	}
	return txid, nil
}

func (t *httpTransport) CommitTransaction(ctx context.Context, txid uint64) error {
	resp, err := t.exchange(ctx, http.MethodPut, txid)
	if err != nil {
		return errors.Wrapf(err, "committing txid=%016x", txid)
	}
	resp.Body.Close()
	return nil
}

func (t *httpTransport) RollbackTransaction(ctx context.Context, txid uint64) error {
	resp, err := t.exchange(ctx, http.MethodDelete, txid)
	if err != nil {
		return errors.Wrapf(err, "rolling back txid=%016x", txid)
	}
	resp.Body.Close()
	return nil
}

func (t *httpTransport) exchange(ctx context.Context, method string, txid uint64) (*http.Response, error) {
	req, err := retryablehttp.NewRequest(method, t.endpoint.Path(transactionPath), nil)
	if err != nil {
		return nil, errors.Wrap(err, "building transaction request")
	}
	req = req.WithContext(ctx)
	if txid != 0 {
		req.Header.Set(txidHeader, strconv.FormatUint(txid, 10))
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, errors.Wrapf(errors.UnmarshalJSON(resp.Body), "server returned %s", resp.Status)
	}
	return resp, nil
}

// s3ObjectStore implements ObjectStore against an S3-compatible endpoint.
type s3ObjectStore struct {
	api s3iface.S3API
}

var _ ObjectStore = (*s3ObjectStore)(nil)

func newS3ObjectStore(endpoint, accessKey, secretKey string) (*s3ObjectStore, error) {
	sess, err := awssession.NewSession(&aws.Config{
		Endpoint:         aws.String(endpoint),
		Region:           aws.String("us-east-1"),
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating aws session")
	}
	return &s3ObjectStore{api: s3.New(sess)}, nil
}

func (s *s3ObjectStore) HeadBucket(ctx context.Context, name string) error {
	_, err := s.api.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(name),
	})
	return err
}
