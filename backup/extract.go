// Package backup prepares database uploads for restore and archives backups
// to S3.
package backup

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// MaxUploadBytes caps restore uploads and any single extracted entry.
const MaxUploadBytes = 300 << 20

var (
	ErrNotSQLite    = errors.New("uploaded file is not a sqlite database")
	ErrEmptyArchive = errors.New("archive contains no files")
	ErrTooLarge     = errors.New("extracted file exceeds upload limit")
)

// Kind is the container format of an uploaded backup, chosen by file name.
type Kind string

const (
	KindTarGz Kind = "tar.gz"
	KindTar   Kind = "tar"
	KindGzip  Kind = "gz"
	KindZip   Kind = "zip"
	KindRaw   Kind = "raw"
)

var dbSuffixes = mapset.NewSet(".db", ".sqlite", ".sqlite3")

// DetectKind maps a file name to its container format. Unknown suffixes are
// treated as a raw database file.
func DetectKind(name string) Kind {
	lower := strings.ToLower(strings.TrimSpace(name))
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return KindTarGz
	case strings.HasSuffix(lower, ".tar"):
		return KindTar
	case strings.HasSuffix(lower, ".gz"):
		return KindGzip
	case strings.HasSuffix(lower, ".zip"):
		return KindZip
	default:
		return KindRaw
	}
}

func isDBName(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range dbSuffixes.ToSlice() {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// Extract unpacks the upload at src into a new temp file in dir and returns
// its path. name is the client's original file name. Archives prefer the
// first entry named *.db, *.sqlite or *.sqlite3 and otherwise use the first
// regular file. The caller removes the returned file.
func Extract(src, name, dir string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	switch DetectKind(name) {
	case KindTarGz:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("invalid gzip: %w", err)
		}
		defer gz.Close()
		return fromTar(tar.NewReader(gz), dir)
	case KindTar:
		return fromTar(tar.NewReader(f), dir)
	case KindGzip:
		gz, err := gzip.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("invalid gzip: %w", err)
		}
		defer gz.Close()
		return writeTemp(gz, dir)
	case KindZip:
		return fromZip(src, dir)
	default:
		return writeTemp(f, dir)
	}
}

func fromTar(tr *tar.Reader, dir string) (string, error) {
	var chosen string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("invalid tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if chosen != "" && !isDBName(hdr.Name) {
			continue
		}
		path, err := writeTemp(tr, dir)
		if err != nil {
			return "", err
		}
		if chosen != "" {
			os.Remove(chosen)
		}
		chosen = path
		if isDBName(hdr.Name) {
			break
		}
	}
	if chosen == "" {
		return "", ErrEmptyArchive
	}
	return chosen, nil
}

func fromZip(src, dir string) (string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return "", fmt.Errorf("invalid zip: %w", err)
	}
	defer r.Close()

	var chosen *zip.File
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if isDBName(f.Name) {
			chosen = f
			break
		}
		if chosen == nil {
			chosen = f
		}
	}
	if chosen == nil {
		return "", ErrEmptyArchive
	}
	rc, err := chosen.Open()
	if err != nil {
		return "", fmt.Errorf("open zip entry %s: %w", chosen.Name, err)
	}
	defer rc.Close()
	return writeTemp(rc, dir)
}

func writeTemp(r io.Reader, dir string) (string, error) {
	out, err := os.CreateTemp(dir, "kndweb-restore-*.db")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := out.Name()
	n, err := io.Copy(out, io.LimitReader(r, MaxUploadBytes+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxUploadBytes {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(path)
		if errors.Is(err, ErrTooLarge) {
			return "", err
		}
		return "", fmt.Errorf("extract: %w", err)
	}
	return path, nil
}

const sqliteHeader = "SQLite format 3\x00"

// CheckHeader reports ErrNotSQLite unless the file starts with the SQLite
// magic header.
func CheckHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open extracted file: %w", err)
	}
	defer f.Close()

	header := make([]byte, len(sqliteHeader))
	n, _ := io.ReadFull(f, header)
	if n < len(sqliteHeader) {
		return fmt.Errorf("%w: file is too small", ErrNotSQLite)
	}
	if string(header) != sqliteHeader {
		return ErrNotSQLite
	}
	return nil
}
