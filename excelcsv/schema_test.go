package excelcsv

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert"
)

func TestSchemaInsert(t *testing.T) {
	s := Schema{"a", "b", "c"}
	assert.Equal(t, Schema{"x", "y", "a", "b", "c"}, s.Prepend("x", "y"))
	assert.Equal(t, Schema{"a", "b", "c", "x", "y"}, s.Append("x", "y"))
	assert.Equal(t, Schema{"a", "x", "y", "b", "c"}, s.Insert(1, "x", "y"))
	got, err := s.InsertAfter("c", "x", "y")
	assert.NoError(t, err)
	assert.Equal(t, Schema{"a", "b", "c", "x", "y"}, got)
	got, err = s.InsertAfter("a", "x")
	assert.NoError(t, err)
	assert.Equal(t, Schema{"a", "x", "b", "c"}, got)
	// original is not modified
	assert.Equal(t, Schema{"a", "b", "c"}, s)

	_, err = s.InsertAfter("nope", "x")
	assert.True(t, errors.Is(err, ErrFieldNotFound))
}

func TestSchemaInsertPanics(t *testing.T) {
	defer func() {
		assert.True(t, recover() != nil)
	}()
	Schema{"a"}.Insert(2, "x")
}

func TestSchemaRemoveRename(t *testing.T) {
	s := Schema{"a", "b", "a"}
	got, err := s.Remove("a")
	assert.NoError(t, err)
	assert.Equal(t, Schema{"b", "a"}, got)
	assert.Equal(t, Schema{"a", "b", "a"}, s)
	_, err = s.Remove("z")
	assert.True(t, errors.Is(err, ErrFieldNotFound))

	got, err = s.Rename("b", "B")
	assert.NoError(t, err)
	assert.Equal(t, Schema{"a", "B", "a"}, got)
	_, err = s.Rename("z", "Z")
	assert.True(t, errors.Is(err, ErrFieldNotFound))
}

func TestSchemaPermutation(t *testing.T) {
	s := Schema{"a", "b", "c"}
	assert.True(t, Schema{"c", "a", "b"}.isPermutationOf(s))
	assert.False(t, Schema{"c", "a"}.isPermutationOf(s))
	assert.False(t, Schema{"c", "a", "a"}.isPermutationOf(s))
	assert.False(t, Schema{"c", "a", "d"}.isPermutationOf(s))
}

func TestInferSchema(t *testing.T) {
	_, ok := InferSchema(nil)
	assert.False(t, ok)
	s, ok := InferSchema(peopleRecords())
	assert.True(t, ok)
	assert.Equal(t, Schema{"name", "age", "pet"}, s)
	assert.Equal(t, "name,age,pet", s.String())
}
