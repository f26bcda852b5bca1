package vastdb_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vastdb "github.com/vast-data/vastdb-go"
	"github.com/vast-data/vastdb-go/errors"
)

func TestPrefixToRange(t *testing.T) {
	tests := []struct {
		prefix string
		lower  []byte
		upper  []byte
	}{
		{prefix: "a", lower: []byte("a"), upper: []byte("b")},
		{prefix: "abc", lower: []byte("abc"), upper: []byte("abd")},
		{prefix: "abc\x00", lower: []byte("abc\x00"), upper: []byte("abc\x01")},
		{prefix: "abc\x7f", lower: []byte("abc\x7f"), upper: []byte("abc\x80")},
		{prefix: "/a/b/c", lower: []byte("/a/b/c"), upper: []byte("/a/b/d")},
		{prefix: "/123α", lower: []byte("/123\xce\xb1"), upper: []byte("/123\xce\xb2")},
		{prefix: "/123αA", lower: []byte("/123\xce\xb1A"), upper: []byte("/123\xce\xb1B")},
		// max code point: no next character exists, the increment carries
		// into the raw bytes
		{prefix: "\U0010ffff", lower: []byte("\xf4\x8f\xbf\xbf"), upper: []byte("\xf4\x8f\xbf\xc0")},
		// U+07FF's successor U+0800 is one encoded byte longer, so the
		// bound comes from the byte-level path here too
		{prefix: "߿", lower: []byte("\xdf\xbf"), upper: []byte("\xdf\xc0")},
	}

	for _, test := range tests {
		t.Run(fmt.Sprintf("%q", test.prefix), func(t *testing.T) {
			r, err := vastdb.PrefixToRange(test.prefix)
			require.NoError(t, err)
			assert.Equal(t, test.lower, r.Lower)
			assert.Equal(t, test.upper, r.Upper)
		})
	}
}

func TestPrefixToRangeEmpty(t *testing.T) {
	_, err := vastdb.PrefixToRange("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, vastdb.ErrInvalidRange))
}

// Every string starting with the prefix must fall inside [Lower, Upper),
// and close neighbors outside the prefix set must fall outside.
func TestPrefixToRangeBounds(t *testing.T) {
	for _, prefix := range []string{"a", "user/42/", "/123α", "abc\x7f", "߿"} {
		t.Run(fmt.Sprintf("%q", prefix), func(t *testing.T) {
			r, err := vastdb.PrefixToRange(prefix)
			require.NoError(t, err)
			require.True(t, bytes.Compare(r.Lower, r.Upper) < 0)

			for _, suffix := range []string{"", "\x00", "a", "zzz", "\U0010ffff"} {
				s := []byte(prefix + suffix)
				assert.True(t, bytes.Compare(r.Lower, s) <= 0, "lower > %q", s)
				assert.True(t, bytes.Compare(s, r.Upper) < 0, "%q >= upper", s)
			}

			// upper itself is excluded, as is anything below the prefix
			assert.False(t, bytes.Compare(r.Upper, r.Upper) < 0)
			below := []byte(prefix)
			below = below[:len(below)-1]
			if len(below) > 0 {
				assert.True(t, bytes.Compare(below, r.Lower) < 0)
			}
		})
	}
}
