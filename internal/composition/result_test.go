package composition

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	t.Run("zero value is success", func(t *testing.T) {
		var r Result
		assert.True(t, r.Succeeded())
		assert.Nil(t, r.Errors())
		assert.NoError(t, r.Err())
	})

	t.Run("nil error is ignored", func(t *testing.T) {
		r := Result{}.MergeError(nil)
		assert.True(t, r.Succeeded())
	})

	t.Run("merging appends in order", func(t *testing.T) {
		first := errors.New("first")
		second := errors.New("second")

		r := Result{}.MergeError(first)
		require.Len(t, r.Errors(), 1)

		r2 := r.MergeError(second)
		assert.Equal(t, []error{first, second}, r2.Errors())
		assert.Len(t, r.Errors(), 1, "merge must not mutate the receiver")
	})

	t.Run("merging results", func(t *testing.T) {
		a := Result{}.MergeError(errors.New("a"))
		b := Result{}.MergeError(errors.New("b"))

		assert.Equal(t, a, a.MergeResult(Result{}))
		assert.Equal(t, b, Result{}.MergeResult(b))
		assert.Len(t, a.MergeResult(b).Errors(), 2)
	})

	t.Run("failed result surfaces one aggregated error", func(t *testing.T) {
		r := Result{}.
			MergeError(Wrap(ErrImportNotSet, "p", "A", nil)).
			MergeError(Wrap(ErrImportNotSet, "p", "B", nil))

		err := r.Err()
		var agg *CompositionError
		require.ErrorAs(t, err, &agg)
		assert.Len(t, agg.Errors, 2)
		assert.ErrorIs(t, err, ErrImportNotSet)
		assert.Contains(t, err.Error(), "element 'A'")
		assert.Contains(t, err.Error(), "element 'B'")
	})
}

func TestError(t *testing.T) {
	cause := errors.New("boom")
	err := WrapOp(ErrCollectionOperationFailed, "catalog", "Plugins", "Clear", cause)

	assert.ErrorIs(t, err, ErrCollectionOperationFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "part 'catalog': element 'Plugins': collection operation failed (during Clear): boom", err.Error())
}

func TestGuard(t *testing.T) {
	t.Run("passes through errors", func(t *testing.T) {
		want := errors.New("plain")
		assert.Equal(t, want, Guard(func() error { return want }))
	})

	t.Run("recovers panics", func(t *testing.T) {
		err := Guard(func() error { panic("kaboom") })
		var pe *PanicError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "kaboom", pe.Value)
		assert.NotEmpty(t, pe.Stack)
	})

	t.Run("unwraps error panics", func(t *testing.T) {
		inner := errors.New("inner")
		err := Guard(func() error { panic(inner) })
		assert.ErrorIs(t, err, inner)
	})
}
