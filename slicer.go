package vastdb

import (
	"bytes"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/apache/arrow/go/v10/arrow/ipc"
	"golang.org/x/sync/errgroup"

	"github.com/vast-data/vastdb-go/errors"
)

const (
	// MaxTabularRequestSize is the transport's maximum message size in
	// bytes.
	MaxTabularRequestSize = 5 << 20

	// DefaultMaxSliceSize bounds one serialized record slice. It leaves
	// 10% of the request ceiling for framing around the payload.
	DefaultMaxSliceSize = MaxTabularRequestSize / 10 * 9
)

// SerializeRecord encodes rec as one self-describing Arrow IPC stream
// (schema plus record batch), decodable without any external context.
func SerializeRecord(rec arrow.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := ipc.NewWriter(&buf, ipc.WithSchema(rec.Schema()))
	if err := w.Write(rec); err != nil {
		w.Close()
		return nil, errors.Wrap(err, "writing record to ipc stream")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "closing ipc stream")
	}
	return buf.Bytes(), nil
}

// SliceIterator produces serialized slices of a record, each at most
// maxSliceSize bytes, in ascending row order. Concatenating the decoded
// slices reconstructs the record exactly.
//
// Row byte-width can vary wildly across a record (think variable-length
// text columns), so instead of guessing a fixed row count per slice the
// iterator bisects: serialize a row range, emit it if it fits, otherwise
// split it at the midpoint and try each half. The pending ranges live on
// an explicit stack, keeping memory bounded for very narrow records.
type SliceIterator struct {
	rec   arrow.Record
	max   int64
	stack []rowRange // pending ranges, top at the end, lowest rows on top
	cur   []byte
	err   error
}

type rowRange struct {
	lo, hi int64
}

// SerializedSlices returns an iterator over bounded-size serialized slices
// of rec. A maxSliceSize of zero or below selects DefaultMaxSliceSize.
// The iterator does not retain rec past the last call; iterate again from
// a fresh SerializedSlices call to restart.
func SerializedSlices(rec arrow.Record, maxSliceSize int64) *SliceIterator {
	if maxSliceSize <= 0 {
		maxSliceSize = DefaultMaxSliceSize
	}
	return &SliceIterator{
		rec:   rec,
		max:   maxSliceSize,
		stack: []rowRange{{lo: 0, hi: rec.NumRows()}},
	}
}

// Next advances to the next slice. It returns false when the record is
// exhausted or an error occurred; check Err afterwards.
func (it *SliceIterator) Next() bool {
	if it.err != nil {
		return false
	}
	for len(it.stack) > 0 {
		r := it.stack[len(it.stack)-1]
		it.stack = it.stack[:len(it.stack)-1]

		slice := it.rec.NewSlice(r.lo, r.hi)
		buf, err := SerializeRecord(slice)
		slice.Release()
		if err != nil {
			it.err = err
			return false
		}
		if int64(len(buf)) <= it.max {
			it.cur = buf
			return true
		}
		if r.hi-r.lo <= 1 {
			it.err = errors.Newf(ErrTooWideRow,
				"row %d serializes to %d bytes, above the %d byte slice limit",
				r.lo, len(buf), it.max)
			return false
		}
		mid := r.lo + (r.hi-r.lo)/2
		// lower half goes on top so slices come out in row order
		it.stack = append(it.stack, rowRange{lo: mid, hi: r.hi}, rowRange{lo: r.lo, hi: mid})
	}
	it.cur = nil
	return false
}

// Value returns the slice produced by the last successful Next call.
func (it *SliceIterator) Value() []byte { return it.cur }

// Err returns the first error hit while iterating, if any.
func (it *SliceIterator) Err() error { return it.err }

// CollectSlices drains SerializedSlices(rec, maxSliceSize) into a list.
func CollectSlices(rec arrow.Record, maxSliceSize int64) ([][]byte, error) {
	var out [][]byte
	it := SerializedSlices(rec, maxSliceSize)
	for it.Next() {
		out = append(out, it.Value())
	}
	return out, it.Err()
}

// CollectSlicesParallel is CollectSlices fanned out over up to parallelism
// goroutines. The row range is partitioned into contiguous segments, one
// per worker, so the output slice order is still row-range ascending; the
// slice boundaries may differ from the sequential ones.
func CollectSlicesParallel(rec arrow.Record, maxSliceSize int64, parallelism int) ([][]byte, error) {
	n := rec.NumRows()
	if parallelism < 1 {
		parallelism = 1
	}
	if int64(parallelism) > n {
		parallelism = int(n)
	}
	if parallelism <= 1 {
		return CollectSlices(rec, maxSliceSize)
	}

	results := make([][][]byte, parallelism)
	var g errgroup.Group
	per := n / int64(parallelism)
	for i := 0; i < parallelism; i++ {
		i := i
		lo := int64(i) * per
		hi := lo + per
		if i == parallelism-1 {
			hi = n
		}
		g.Go(func() error {
			seg := rec.NewSlice(lo, hi)
			defer seg.Release()
			slices, err := CollectSlices(seg, maxSliceSize)
			if err != nil {
				return err
			}
			results[i] = slices
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out [][]byte
	for _, slices := range results {
		out = append(out, slices...)
	}
	return out, nil
}
