package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Smallest valid PNG: signature plus IHDR, IDAT and IEND chunks.
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00, 0x05,
	0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4,
	0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func TestSaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	p, err := NewPhotos(dir, "http://localhost:8080/", 1024)
	require.NoError(t, err)

	name, err := p.Save(bytes.NewReader(tinyPNG))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "ocorrencia_"))
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.Equal(t, "http://localhost:8080/uploads/"+name, p.URL(name))

	_, err = os.Stat(filepath.Join(dir, name))
	require.NoError(t, err)

	require.NoError(t, p.Remove(name))
	_, err = os.Stat(filepath.Join(dir, name))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, p.Remove(name))
}

func TestSaveRejects(t *testing.T) {
	p, err := NewPhotos(t.TempDir(), "", 16)
	require.NoError(t, err)

	_, err = p.Save(bytes.NewReader(tinyPNG))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = p.Save(strings.NewReader("hello"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Equal(t, "", p.URL(""))
}
