package pdf

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Per-file error codes.
const (
	CodeMissingFile  = "MISSING_FILE"
	CodeNotPDFExt    = "NOT_PDF_EXT"
	CodeReadError    = "READ_ERROR"
	CodeNotPDFHeader = "NOT_PDF_HEADER"
	CodeParseFail    = "PARSE_FAIL"
)

// FileError is a per-file failure tagged with one of the codes above.
type FileError struct {
	Code string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Path)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

var pdfMagic = []byte("%PDF-")

// Validate checks that path exists, has a .pdf extension and starts with
// the PDF header.
func Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return &FileError{Code: CodeMissingFile, Path: path, Err: err}
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return &FileError{Code: CodeNotPDFExt, Path: path}
	}

	f, err := os.Open(path)
	if err != nil {
		return &FileError{Code: CodeReadError, Path: path, Err: err}
	}
	defer f.Close()

	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		return &FileError{Code: CodeNotPDFHeader, Path: path, Err: err}
	}
	if !bytes.Equal(head, pdfMagic) {
		return &FileError{Code: CodeNotPDFHeader, Path: path}
	}
	return nil
}

// HashFile returns the hex SHA-256 of the file's contents.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
