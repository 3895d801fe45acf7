package product

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/wishlist-service/pkg/errors"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const sampleCatalog = `[
	{"id": "1", "title": "Desk Lamp", "image": "http://cdn.example.com/1.jpg", "price": 49.9, "reviewScore": 4.3},
	{"id": "2", "title": "Office Chair", "image": "http://cdn.example.com/2.jpg", "price": 899.0}
]`

func TestNewFileSource_LoadsCatalog(t *testing.T) {
	src, err := NewFileSource(writeCatalog(t, sampleCatalog))
	require.NoError(t, err)
	assert.Equal(t, 2, src.Len())
}

func TestNewFileSource_MissingFile(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read product catalog")
}

func TestNewFileSource_MalformedJSON(t *testing.T) {
	_, err := NewFileSource(writeCatalog(t, `{"not": "an array"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse product catalog")
}

func TestNewFileSource_EntryWithoutID(t *testing.T) {
	_, err := NewFileSource(writeCatalog(t, `[{"title": "Nameless"}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty id")
}

func TestFileSource_Get(t *testing.T) {
	src, err := NewFileSource(writeCatalog(t, sampleCatalog))
	require.NoError(t, err)

	p, err := src.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", p.Title)
	assert.Equal(t, 49.9, p.Price)
	require.NotNil(t, p.ReviewScore)
	assert.Equal(t, 4.3, *p.ReviewScore)

	p, err = src.Get(context.Background(), "2")
	require.NoError(t, err)
	assert.Nil(t, p.ReviewScore)
}

func TestFileSource_Get_NotFound(t *testing.T) {
	src, err := NewFileSource(writeCatalog(t, sampleCatalog))
	require.NoError(t, err)

	_, err = src.Get(context.Background(), "999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "expected ErrNotFound, got: %v", err)
}
