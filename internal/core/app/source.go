package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"logicdoc/internal/core/errors"

	"github.com/gobwas/glob"
)

const readErrorPrefix = "Error reading file: "

// source is one configured file as read from disk.
type source struct {
	Rel     string
	Abs     string
	Size    int64
	ModTime time.Time
	// Text is Raw with invalid UTF-8 replaced; Raw is what is on disk.
	Text string
	Raw  []byte
	// ReadErr is set when the file exists but could not be read; Text then
	// carries the error line so the report still shows something.
	ReadErr string
}

type sourceReader struct {
	root     string
	excludes []glob.Glob
	cache    *contentCache
}

func newSourceReader(root string, excludes []glob.Glob, cacheSize int) (*sourceReader, error) {
	cache, err := newContentCache(cacheSize)
	if err != nil {
		return nil, err
	}
	return &sourceReader{root: filepath.Clean(root), excludes: excludes, cache: cache}, nil
}

// Resolve maps a configured path to an absolute path under the project root.
func (r *sourceReader) Resolve(rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(r.root, filepath.FromSlash(rel))
}

// Excluded reports whether rel matches an exclude.files glob.
func (r *sourceReader) Excluded(rel string) bool {
	slashed := filepath.ToSlash(rel)
	for _, g := range r.excludes {
		if g.Match(slashed) {
			return true
		}
	}
	return false
}

// Read returns NOT_FOUND for missing files. Other read failures are folded
// into the returned source.
func (r *sourceReader) Read(rel string) (source, error) {
	abs := r.Resolve(rel)
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			derr := errors.Wrap(err, errors.CodeNotFound, "source file not found")
			return source{}, errors.AddContext(derr, errors.CtxPath, rel)
		}
		return source{Rel: rel, Abs: abs, ReadErr: err.Error(), Text: readErrorPrefix + err.Error()}, nil
	}
	if info.IsDir() {
		derr := errors.New(errors.CodeNotFound, "source path is a directory")
		return source{}, errors.AddContext(derr, errors.CtxPath, rel)
	}

	src := source{Rel: rel, Abs: abs, Size: info.Size(), ModTime: info.ModTime()}
	key := keyFor(abs, src.Size, src.ModTime)
	if cached, ok := r.cache.get(key); ok {
		src.Text, src.Raw = cached.text, cached.raw
		return src, nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		src.ReadErr = err.Error()
		src.Text = readErrorPrefix + err.Error()
		return src, nil
	}
	src.Raw = data
	src.Text = strings.ToValidUTF8(string(data), "�")
	r.cache.put(key, cachedContent{text: src.Text, raw: src.Raw})
	return src, nil
}
