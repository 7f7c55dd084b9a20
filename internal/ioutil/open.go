// Package ioutil opens the parser's input/output/log handles, transparently
// decompressing a gzip-archived input and leaving plain files untouched --
// NWS SHEF message logs are routinely rotated through gzip, and operators
// should not need a separate unzip step before handing a file to shefit.
package ioutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archiver/v3"
)

// OpenInput opens path for reading, transparently decompressing it into a
// temporary file first if it carries a recognized archive extension
// (mirrors rnxgo's archiver.DecompressFile use for incoming RINEX files).
func OpenInput(path string) (io.ReadCloser, error) {
	if !isArchived(path) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("ioutil: open input %s: %w", path, err)
		}
		return f, nil
	}

	tmp, err := os.CreateTemp("", "shefit-in-*"+strings.TrimSuffix(filepath.Ext(path), archiveExt(path)))
	if err != nil {
		return nil, fmt.Errorf("ioutil: create decompress tmp file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := archiver.DecompressFile(path, tmpPath); err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ioutil: decompress %s: %w", path, err)
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, fmt.Errorf("ioutil: open decompressed %s: %w", path, err)
	}
	return &cleanupReader{f, tmpPath}, nil
}

// OpenOutput opens path for writing; append controls O_APPEND vs O_TRUNC
// per the --append_out/--append_log flags. A buffered writer is returned so
// the caller can write lines cheaply; Close flushes and writes the trailing
// newline the spec requires on close (§5).
func OpenOutput(path string, appendExisting bool) (*Writer, error) {
	flags := os.O_WRONLY | os.O_CREATE
	if appendExisting {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("ioutil: open output %s: %w", path, err)
	}
	return &Writer{f: f, bw: bufio.NewWriter(f)}, nil
}

// Writer wraps a buffered output handle that appends a trailing newline on
// Close, per §5's resource model ("The output handle receives a trailing
// newline on close").
type Writer struct {
	f  *os.File
	bw *bufio.Writer
}

func (w *Writer) WriteString(s string) error {
	_, err := w.bw.WriteString(s)
	return err
}

// Close flushes buffered output, appends the trailing newline, and closes
// the underlying file.
func (w *Writer) Close() error {
	if err := w.bw.WriteByte('\n'); err != nil {
		w.f.Close()
		return err
	}
	if err := w.bw.Flush(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

type cleanupReader struct {
	*os.File
	tmpPath string
}

func (c *cleanupReader) Close() error {
	err := c.File.Close()
	os.Remove(c.tmpPath)
	return err
}

func isArchived(path string) bool {
	return archiveExt(path) != ""
}

func archiveExt(path string) string {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return ".gz"
	case strings.HasSuffix(path, ".zip"):
		return ".zip"
	case strings.HasSuffix(path, ".bz2"):
		return ".bz2"
	}
	return ""
}
