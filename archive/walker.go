// Package archive finds stylesheets stored in zip archives.
package archive

import (
	"archive/zip"
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/encoding"
)

// WalkFunc is called for every stylesheet found by Walk. The name argument is
// the entry path inside archive, decoded when archive does not use UTF-8 for
// names and code page was supplied. If an error is returned, walking stops.
type WalkFunc func(name string, file *zip.File) error

// IsStylesheet reports whether file name looks like css stylesheet.
func IsStylesheet(name string) bool {
	return strings.EqualFold(path.Ext(name), ".css")
}

// Walk visits all stylesheets in the archive located under prefix. Entries
// with absolute paths or ".." components make archive unusable and Walk
// returns an error before anything is visited.
func Walk(archive, prefix string, cp encoding.Encoding, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if !isSafePath(f.Name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", f.Name)
		}
	}

	prefix = strings.TrimPrefix(path.Clean("/"+filepathToSlash(prefix)), "/")
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := DecodeName(&f.FileHeader, cp)
		if !IsStylesheet(name) || !underPrefix(name, prefix) {
			continue
		}
		if err := walkFn(name, f); err != nil {
			return err
		}
	}
	return nil
}

// DecodeName returns entry name converted from the archaic code page. Names
// which are flagged as UTF-8 or cannot be converted are returned as is.
func DecodeName(fh *zip.FileHeader, cp encoding.Encoding) string {
	if cp == nil || !fh.NonUTF8 {
		return fh.Name
	}
	if n, err := cp.NewDecoder().String(fh.Name); err == nil {
		return n
	}
	return fh.Name
}

func underPrefix(name, prefix string) bool {
	if prefix == "" {
		return true
	}
	return name == prefix || strings.HasPrefix(name, prefix+"/")
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	for part := range strings.SplitSeq(filepathToSlash(name), "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
