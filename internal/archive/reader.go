// Package archive implements the binary package archive stream: sequential,
// forward-only iteration over a possibly compressed tar, plus extraction of
// the current entry onto the target filesystem.
package archive

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Magic bytes for compression detection
var (
	gzipMagic = []byte{0x1F, 0x8B}
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	xzMagic   = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}
)

// EntryType is the file type of one archive entry.
type EntryType int

const (
	TypeFile EntryType = iota
	TypeDir
	TypeSymlink
	TypeOther
)

// Entry is one archive member. Path is cleaned and root-relative. Reading
// from the entry streams its raw bytes; the next call to Next invalidates
// it.
type Entry struct {
	Path     string
	Type     EntryType
	Mode     os.FileMode
	Size     int64
	Linkname string
	Uid      int
	Gid      int

	tr *tar.Reader
}

// Read streams the raw bytes of the entry.
func (e *Entry) Read(p []byte) (int, error) { return e.tr.Read(p) }

// Reader streams entries out of a binary package archive. Compression
// (zstd, xz, gzip or none) is detected from the leading magic bytes.
type Reader struct {
	f      *os.File
	closer io.Closer // decompressor, when one is layered in
	tr     *tar.Reader
	cur    *Entry
}

// Open opens a package archive file for streaming.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	header := make([]byte, 6)
	n, _ := io.ReadFull(f, header)
	header = header[:n]
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}

	r := &Reader{f: f}
	switch {
	case bytes.HasPrefix(header, zstdMagic):
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		rc := zr.IOReadCloser()
		r.closer = rc
		r.tr = tar.NewReader(rc)
	case bytes.HasPrefix(header, xzMagic):
		xr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		r.tr = tar.NewReader(xr)
	case bytes.HasPrefix(header, gzipMagic):
		gr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		r.closer = gr
		r.tr = tar.NewReader(gr)
	default:
		r.tr = tar.NewReader(f)
	}
	return r, nil
}

// Next advances to the next archive entry. It returns io.EOF when the
// stream is exhausted.
func (r *Reader) Next() (*Entry, error) {
	for {
		hdr, err := r.tr.Next()
		if err != nil {
			return nil, err
		}

		name := strings.TrimPrefix(path.Clean(hdr.Name), "./")
		if name == "" || name == "." {
			continue
		}
		if name == ".." || strings.HasPrefix(name, "../") || path.IsAbs(name) {
			return nil, fmt.Errorf("archive entry escapes package root: %s", hdr.Name)
		}

		r.cur = &Entry{
			Path:     name,
			Type:     entryType(hdr),
			Mode:     os.FileMode(hdr.Mode).Perm(),
			Size:     hdr.Size,
			Linkname: hdr.Linkname,
			Uid:      hdr.Uid,
			Gid:      hdr.Gid,
			tr:       r.tr,
		}
		return r.cur, nil
	}
}

// Skip discards the remaining bytes of the current entry.
func (r *Reader) Skip() error {
	if r.cur == nil {
		return nil
	}
	_, err := io.Copy(io.Discard, r.tr)
	return err
}

// Close releases the underlying file and any decompressor.
func (r *Reader) Close() error {
	if r.closer != nil {
		r.closer.Close()
	}
	return r.f.Close()
}

func entryType(hdr *tar.Header) EntryType {
	switch hdr.Typeflag {
	case tar.TypeDir:
		return TypeDir
	case tar.TypeSymlink:
		return TypeSymlink
	case tar.TypeReg:
		return TypeFile
	default:
		return TypeOther
	}
}
