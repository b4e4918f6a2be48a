package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// SourceFunc is called for every source file found by WalkSources. Name is
// path relative to the walked directory or path inside archive.
type SourceFunc func(name string, r io.Reader) error

// IsArchiveFile reports whether path has .zip extension and zip content.
func IsArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return filetype.Is(head[:n], "zip"), nil
}

// WalkSources resolves src as a regular file, a directory or a path inside
// zip archive ("site.zip/public") and calls fn for every file accepted by
// match. Archives found in directories are walked as well.
func WalkSources(ctx context.Context, src string, match func(name string) bool, fn SourceFunc) error {
	var head, tail string
	for head = filepath.Clean(src); len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}
		head = strings.TrimSuffix(head, string(filepath.Separator))
		if head == "" {
			break
		}

		fi, err := os.Stat(head)
		if err != nil {
			// does not exist - probably path in archive
			continue
		}

		if fi.IsDir() {
			if len(tail) != 0 {
				return fmt.Errorf("source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			return walkDir(ctx, head, match, fn)
		}
		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s)", head)
		}

		isArchive, err := IsArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			pathIn := filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator)))
			return walkArchive(ctx, head, pathIn, "", match, fn)
		}
		if len(tail) != 0 {
			return fmt.Errorf("source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}
		return openAndCall(head, filepath.Base(head), fn)
	}
	return fmt.Errorf("source was not found (%s)", src)
}

func walkDir(ctx context.Context, dir string, match func(string) bool, fn SourceFunc) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		isArchive, err := IsArchiveFile(path)
		if err != nil {
			return err
		}
		if isArchive {
			return walkArchive(ctx, path, "", filepath.ToSlash(rel), match, fn)
		}
		if !match(rel) {
			return nil
		}
		return openAndCall(path, filepath.ToSlash(rel), fn)
	})
}

func walkArchive(ctx context.Context, path, pathIn, prefix string, match func(string) bool, fn SourceFunc) error {
	return Walk(path, pathIn, func(_ string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !match(f.Name) {
			return nil
		}
		r, err := f.Open()
		if err != nil {
			return fmt.Errorf("unable to open %q in archive: %w", f.Name, err)
		}
		defer r.Close()

		name := f.Name
		if prefix != "" {
			name = prefix + "/" + name
		}
		return fn(name, r)
	})
}

func openAndCall(path, name string, fn SourceFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(name, f)
}
