// Package vastdb is the client-side data plane for a tabular database
// reached over an S3-compatible endpoint. It prepares Arrow record
// batches for transport (bounded-size, independently decodable slices),
// computes byte-range bounds for prefix scans, expands compact endpoint
// specifications into a connection pool, and manages the lifecycle of a
// server-side transaction.
//
// Typical use:
//
//	session, err := vastdb.NewSession(vastdb.Config{
//		Endpoints: []string{"http://172.19.101.1-16"},
//	})
//	if err != nil {
//		return err
//	}
//	err = session.Transaction(ctx, func(tx *vastdb.Transaction) error {
//		bucket, err := tx.Bucket(ctx, "mybucket")
//		if err != nil {
//			return err
//		}
//		it := vastdb.SerializedSlices(record, 0)
//		for it.Next() {
//			send(bucket, it.Value())
//		}
//		return it.Err()
//	})
//
// The scope commits on success and rolls back on error or panic.
package vastdb
