package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageStoreAndDelete(t *testing.T) {
	dir := t.TempDir()
	st, err := NewLocalStorage(dir, "/media/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := st.Store(ctx, strings.NewReader("img"), "businesses/b1/logo.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/media/businesses/b1/logo.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "businesses", "b1", "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))

	require.NoError(t, st.Delete(ctx, "businesses/b1/logo.png"))
	require.NoError(t, st.Delete(ctx, "businesses/b1/logo.png"), "deleting twice is fine")
	_, err = os.Stat(filepath.Join(dir, "businesses", "b1", "logo.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestCleanPath(t *testing.T) {
	p, err := cleanPath(`products\a.png`)
	require.NoError(t, err)
	assert.Equal(t, "products/a.png", p)

	p, err = cleanPath("/../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, "etc/passwd", p, "rooted before cleaning so it cannot climb out")

	for _, bad := range []string{"", "/", "."} {
		_, err := cleanPath(bad)
		assert.Error(t, err, bad)
	}
}
