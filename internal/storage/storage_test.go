package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"poster.png", "poster.png"},
		{"My Poster 2024.jpg", "My_Poster_2024.jpg"},
		{"../../etc/passwd", "etc_passwd"},
		{`C:\Users\me\band.jpeg`, "C_Users_me_band.jpeg"},
		{"café.png", "cafe.png"},
		{"  .hidden.png", "hidden.png"},
		{"ツアー", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SecureFilename(tt.in))
		})
	}
}

func TestImagesStageAndCommit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	s := NewImages(dir, "/static/images/")

	st, err := s.Stage(Upload{Filename: "../band photo.png", Body: strings.NewReader("png-bytes")})
	require.NoError(t, err)
	assert.Equal(t, "/static/images/band_photo.png", st.Path)

	_, err = os.Stat(filepath.Join(dir, "band_photo.png"))
	assert.ErrorIs(t, err, fs.ErrNotExist, "staged image is visible before commit")

	require.NoError(t, s.Commit(st))

	data, err := os.ReadFile(filepath.Join(dir, "band_photo.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, []string{"band_photo.png"}, listDir(t, dir))
}

func TestImagesDiscardKeepsEarlierImage(t *testing.T) {
	dir := t.TempDir()
	s := NewImages(dir, "/static/images")

	first, err := s.Stage(Upload{Filename: "poster.png", Body: strings.NewReader("old")})
	require.NoError(t, err)
	require.NoError(t, s.Commit(first))

	second, err := s.Stage(Upload{Filename: "poster.png", Body: strings.NewReader("new")})
	require.NoError(t, err)
	require.NoError(t, s.Discard(second))
	require.NoError(t, s.Discard(second))

	data, err := os.ReadFile(filepath.Join(dir, "poster.png"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
	assert.Equal(t, []string{"poster.png"}, listDir(t, dir))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestImagesStageFailedCopyLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	s := NewImages(dir, "/static/images")

	first, err := s.Stage(Upload{Filename: "poster.png", Body: strings.NewReader("old")})
	require.NoError(t, err)
	require.NoError(t, s.Commit(first))

	_, err = s.Stage(Upload{Filename: "poster.png", Body: io.MultiReader(strings.NewReader("par"), failingReader{})})
	require.Error(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "poster.png"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
	assert.Equal(t, []string{"poster.png"}, listDir(t, dir))
}

func TestImagesStageRejectsEmptyName(t *testing.T) {
	s := NewImages(t.TempDir(), "/static/images")

	_, err := s.Stage(Upload{Filename: "../", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrInvalidFilename)
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
