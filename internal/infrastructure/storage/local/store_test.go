package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placementcell/recruit-portal/internal/core/domain"
)

func TestStore_SaveOpenDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "resumes")
	s, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "abc_cv.pdf", []byte("%PDF-1.4")))

	ok, err := s.Exists(ctx, "abc_cv.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, size, err := s.Open(ctx, "abc_cv.pdf")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Equal(t, int64(8), size)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")

	require.NoError(t, s.Delete(ctx, "abc_cv.pdf"))
	require.NoError(t, s.Delete(ctx, "abc_cv.pdf"), "delete is idempotent")

	_, _, err = s.Open(ctx, "abc_cv.pdf")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ok, err = s.Exists(ctx, "abc_cv.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SaveOverwrites(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "a.pdf", []byte("one")))
	require.NoError(t, s.Save(ctx, "a.pdf", []byte("two")))

	rc, _, err := s.Open(ctx, "a.pdf")
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "two", string(data))
}

func TestStore_RejectsPathNames(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"", ".", "..", "../x.pdf", "sub/x.pdf"} {
		assert.ErrorIs(t, s.Save(ctx, name, []byte("x")), ErrInvalidName, name)
		_, _, err := s.Open(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
		assert.ErrorIs(t, s.Delete(ctx, name), ErrInvalidName, name)
	}
}
