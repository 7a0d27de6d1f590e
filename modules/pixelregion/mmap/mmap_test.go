//go:build unix

package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e7canasta/orion-mediakit/modules/comerr"
)

func TestMapUnmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vol.raw")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3, 4}, 0o644))

	m := New()
	data, err := m.Map(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)
	require.NoError(t, m.Unmap(data))
}

func TestMapErrors(t *testing.T) {
	m := New()

	_, err := m.Map(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	empty := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = m.Map(empty)
	assert.ErrorIs(t, err, comerr.ErrInvalidArgument)
}
