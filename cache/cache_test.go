package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/esimov/cgui/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_ComputesOncePerContent(t *testing.T) {
	c := New[string]()
	calls := 0
	compute := func(content []byte, digest string) (string, error) {
		calls++
		return "IMG_" + digest[:8], nil
	}

	first, err := c.ComputeIfAbsent([]byte{1, 2, 3}, compute)
	require.NoError(t, err)
	second, err := c.ComputeIfAbsent([]byte{1, 2, 3}, compute)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())
}

func TestCache_DistinctContentComputesSeparately(t *testing.T) {
	c := New[int]()
	calls := 0
	compute := func(content []byte, digest string) (int, error) {
		calls++
		return calls, nil
	}

	a, err := c.ComputeIfAbsent([]byte("a"), compute)
	require.NoError(t, err)
	b, err := c.ComputeIfAbsent([]byte("b"), compute)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, calls)
}

func TestCache_PassesDigest(t *testing.T) {
	c := New[string]()
	content := []byte("glyph")
	got, err := c.ComputeIfAbsent(content, func(_ []byte, digest string) (string, error) {
		return digest, nil
	})
	require.NoError(t, err)
	assert.Equal(t, Digest(content), got)
	assert.Len(t, got, 64)
}

func TestCache_EmptyContentIsValid(t *testing.T) {
	c := New[int]()
	v, err := c.ComputeIfAbsent([]byte{}, func([]byte, string) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestCache_NilContentIsInputShapeError(t *testing.T) {
	c := New[int]()
	called := false
	_, err := c.ComputeIfAbsent(nil, func([]byte, string) (int, error) {
		called = true
		return 0, nil
	})
	require.Error(t, err)
	assert.Equal(t, utils.CodeInputShape, utils.ErrorCode(err))
	assert.False(t, called)
}

func TestCache_FailedComputeIsNotStored(t *testing.T) {
	c := New[int]()
	boom := errors.New("boom")
	_, err := c.ComputeIfAbsent([]byte("x"), func([]byte, string) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, err := c.ComputeIfAbsent([]byte("x"), func([]byte, string) (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestCache_ContextVariant(t *testing.T) {
	c := New[int]()
	ctx := context.Background()
	calls := 0
	compute := func(ctx context.Context, content []byte, digest string) (int, error) {
		calls++
		return len(content), nil
	}

	v, err := c.ComputeIfAbsentContext(ctx, []byte("abcd"), compute)
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	// A hit does not need the collaborator, so cancellation does not matter.
	v, err = c.ComputeIfAbsentContext(cancelled, []byte("abcd"), compute)
	require.NoError(t, err)
	assert.Equal(t, 4, v)

	_, err = c.ComputeIfAbsentContext(cancelled, []byte("efg"), compute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestCache_Clear(t *testing.T) {
	c := New[int]()
	calls := 0
	compute := func([]byte, string) (int, error) {
		calls++
		return calls, nil
	}
	_, _ = c.ComputeIfAbsent([]byte("k"), compute)
	c.Clear()
	assert.Equal(t, 0, c.Len())

	v, err := c.ComputeIfAbsent([]byte("k"), compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestCache_StoreAndLookup(t *testing.T) {
	c := New[string]()
	d := Digest([]byte("k"))
	assert.True(t, c.Store(d, "first"))
	assert.False(t, c.Store(d, "second"))

	v, ok := c.Lookup(d)
	assert.True(t, ok)
	assert.Equal(t, "first", v)

	v, ok = c.Get([]byte("k"))
	assert.True(t, ok)
	assert.Equal(t, "first", v)
}
