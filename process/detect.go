package process

import (
	"errors"
	"io"
	"os"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
)

// signatures of all formats known to filetype fit into this many bytes
const headerSize = 262

func readHeader(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, headerSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return head[:n], nil
}

// isArchiveFile checks if file is a zip archive.
func isArchiveFile(path string) (bool, error) {
	head, err := readHeader(path)
	if err != nil {
		return false, err
	}
	return filetype.Is(head, "zip"), nil
}

// isTextFile checks that file is not any of the binary formats filetype
// knows about. Stylesheets have no signature of their own.
func isTextFile(path string) (bool, types.Type, error) {
	head, err := readHeader(path)
	if err != nil {
		return false, filetype.Unknown, err
	}
	if len(head) == 0 {
		return true, filetype.Unknown, nil
	}
	kind, err := filetype.Match(head)
	if err != nil {
		return false, filetype.Unknown, err
	}
	return kind == filetype.Unknown, kind, nil
}
