package vastdb_test

import (
	"testing"

	"github.com/apache/arrow/go/v10/arrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vastdb "github.com/vast-data/vastdb-go"
	"github.com/vast-data/vastdb-go/errors"
)

func schemaOf(fields ...arrow.Field) *arrow.Schema {
	return arrow.NewSchema(fields, nil)
}

var (
	fieldX = arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Int64}
	fieldY = arrow.Field{Name: "y", Type: arrow.PrimitiveTypes.Float64}
	fieldZ = arrow.Field{Name: "z", Type: arrow.BinaryTypes.String}
)

func TestDefaultSchemaMerge(t *testing.T) {
	t.Run("FirstFile", func(t *testing.T) {
		got, err := vastdb.DefaultSchemaMerge(nil, schemaOf(fieldX))
		require.NoError(t, err)
		assert.True(t, got.Equal(schemaOf(fieldX)))

		// an empty accumulated schema behaves like nil
		got, err = vastdb.DefaultSchemaMerge(schemaOf(), schemaOf(fieldX))
		require.NoError(t, err)
		assert.True(t, got.Equal(schemaOf(fieldX)))
	})

	t.Run("ContainedKeepsWiderOrder", func(t *testing.T) {
		wide := schemaOf(fieldX, fieldY, fieldZ)
		got, err := vastdb.DefaultSchemaMerge(schemaOf(fieldY), wide)
		require.NoError(t, err)
		assert.True(t, got.Equal(wide))

		// same result when the wider schema comes first
		got, err = vastdb.DefaultSchemaMerge(wide, schemaOf(fieldY))
		require.NoError(t, err)
		assert.True(t, got.Equal(wide))
	})

	t.Run("Mismatch", func(t *testing.T) {
		conflicting := arrow.Field{Name: "x", Type: arrow.BinaryTypes.String}
		_, err := vastdb.DefaultSchemaMerge(schemaOf(fieldX), schemaOf(conflicting, fieldY))
		require.Error(t, err)
		assert.True(t, errors.Is(err, vastdb.ErrInvalidArgument))
	})
}

func TestStrictSchemaMerge(t *testing.T) {
	s := schemaOf(fieldX, fieldY)
	got, err := vastdb.StrictSchemaMerge(schemaOf(), s)
	require.NoError(t, err)
	assert.True(t, got.Equal(s))

	got, err = vastdb.StrictSchemaMerge(s, schemaOf(fieldX, fieldY))
	require.NoError(t, err)
	assert.True(t, got.Equal(s))

	_, err = vastdb.StrictSchemaMerge(s, schemaOf(fieldX))
	require.Error(t, err)
	assert.True(t, errors.Is(err, vastdb.ErrInvalidArgument))
}

func TestUnionSchemaMerge(t *testing.T) {
	got, err := vastdb.UnionSchemaMerge(schemaOf(), schemaOf(fieldZ))
	require.NoError(t, err)
	assert.True(t, got.Equal(schemaOf(fieldZ)))

	got, err = vastdb.UnionSchemaMerge(schemaOf(fieldX, fieldY), schemaOf(fieldY, fieldZ))
	require.NoError(t, err)
	assert.True(t, got.Equal(schemaOf(fieldX, fieldY, fieldZ)))

	conflicting := arrow.Field{Name: "y", Type: arrow.BinaryTypes.String}
	_, err = vastdb.UnionSchemaMerge(schemaOf(fieldX, fieldY), schemaOf(conflicting))
	require.Error(t, err)
	assert.True(t, errors.Is(err, vastdb.ErrInvalidArgument))
}
