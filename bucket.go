package vastdb

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/opentracing/opentracing-go"

	"github.com/vast-data/vastdb-go/errors"
)

// Bucket is a reference to a named bucket, valid only within the
// transaction that resolved it. It is not a network connection.
type Bucket struct {
	name string
	tx   *Transaction
}

func (b *Bucket) Name() string { return b.name }

// Tx returns the transaction this handle belongs to.
func (b *Bucket) Tx() *Transaction { return b.tx }

func (b *Bucket) String() string {
	return fmt.Sprintf("Bucket(name=%s, tx=0x%016x)", b.name, b.tx.txid)
}

// Bucket resolves name into a handle after checking the bucket's
// existence and permissions. A permission error surfaces as
// ErrAccessDenied; any other failure, including a missing bucket, as
// ErrNotFound. No handle is returned on failure.
func (tx *Transaction) Bucket(ctx context.Context, name string) (*Bucket, error) {
	span, ctx := opentracing.StartSpanFromContextWithTracer(ctx, tx.session.tracer, "vastdb.Bucket")
	defer span.Finish()

	if err := tx.session.store.HeadBucket(ctx, name); err != nil {
		if isAccessDenied(err) {
			return nil, errors.Wrapf(errors.WithCode(err, ErrAccessDenied), "access is denied to bucket: %s", name)
		}
		return nil, errors.Wrapf(errors.WithCode(err, ErrNotFound), "bucket %s does not exist", name)
	}
	return &Bucket{name: name, tx: tx}, nil
}

func isAccessDenied(err error) bool {
	if reqErr, ok := err.(awserr.RequestFailure); ok && reqErr.StatusCode() == http.StatusForbidden {
		return true
	}
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case "AccessDenied", "Forbidden":
			return true
		}
	}
	return false
}
