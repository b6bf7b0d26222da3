// Package storage keeps uploaded event images on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ErrInvalidFilename is returned when nothing usable is left of a filename
// after sanitizing it.
var ErrInvalidFilename = errors.New("invalid filename")

// Upload is an image submitted with the event form.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Images stores files in dir and serves them under urlPrefix.
type Images struct {
	dir       string
	urlPrefix string
}

// NewImages returns an Images rooted at dir.
func NewImages(dir, urlPrefix string) *Images {
	return &Images{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

// Dir is the directory images are written to.
func (s *Images) Dir() string {
	return s.dir
}

// Staged is an upload written to a temporary file in the images directory.
// It is not visible under its final name until committed.
type Staged struct {
	// Path is the public path the image will have once committed.
	Path string
	tmp  string
	dst  string
}

// Stage writes the upload to a temporary file. The caller must Commit or
// Discard the result.
func (s *Images) Stage(u Upload) (*Staged, error) {
	name := SecureFilename(u.Filename)
	if name == "" {
		return nil, ErrInvalidFilename
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}

	// Sanitized names never start with a dot, so temp files cannot clash.
	f, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create image file: %w", err)
	}
	st := &Staged{
		Path: path.Join(s.urlPrefix, name),
		tmp:  f.Name(),
		dst:  filepath.Join(s.dir, name),
	}

	if _, err := io.Copy(f, u.Body); err != nil {
		_ = f.Close()
		_ = s.Discard(st)
		return nil, fmt.Errorf("write image: %w", err)
	}
	if err := f.Chmod(0o644); err != nil {
		_ = f.Close()
		_ = s.Discard(st)
		return nil, fmt.Errorf("chmod image: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = s.Discard(st)
		return nil, fmt.Errorf("close image: %w", err)
	}
	return st, nil
}

// Commit moves a staged image to its final name, replacing any earlier file
// with that name.
func (s *Images) Commit(st *Staged) error {
	if err := os.Rename(st.tmp, st.dst); err != nil {
		return fmt.Errorf("commit image: %w", err)
	}
	return nil
}

// Discard removes a staged image that will not be committed.
func (s *Images) Discard(st *Staged) error {
	if err := os.Remove(st.tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("discard image: %w", err)
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces a client supplied filename to a plain ASCII base
// name that cannot escape the images directory.
func SecureFilename(name string) string {
	name = norm.NFKD.String(name)
	name = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		if r == '/' || r == '\\' {
			return ' '
		}
		return r
	}, name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}
