package kndweb

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kindanddivine/kndweb/views"
)

// ErrImageNotFound is returned when a media filename is not in the index.
var ErrImageNotFound = errors.New("image not found")

// Image is an uploaded media file. Key is the object key in S3, or empty
// for files stored under the static dir.
type Image struct {
	Filename     string
	Key          string
	URL          string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   time.Time
}

// View converts the record to the dashboard's media model.
func (img Image) View() views.MediaImage {
	return views.MediaImage{
		Filename:     img.Filename,
		URL:          img.URL,
		OriginalName: img.OriginalName,
		Width:        img.Width,
		Height:       img.Height,
		Size:         img.Size,
		UploadedAt:   img.UploadedAt.Format(time.RFC3339),
	}
}

// MediaStore wraps the local SQLite media index. The backend knows nothing
// about uploads; this index is what the media tab lists.
type MediaStore struct {
	db *sql.DB
}

// NewMediaStore opens (or creates) the SQLite database at path, ensures the
// data directory exists, and runs schema migrations.
func NewMediaStore(path string) (*MediaStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed during an upload; busy_timeout makes writers
	// wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &MediaStore{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *MediaStore) Close() error {
	return s.db.Close()
}

func (s *MediaStore) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS images (
    filename TEXT PRIMARY KEY,
    url TEXT NOT NULL,
    original_name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);
`)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`ALTER TABLE images ADD COLUMN object_key TEXT NOT NULL DEFAULT '';`); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate column") {
			return nil
		}
		return err
	}
	return nil
}

// Save inserts or replaces the record for img.Filename.
func (s *MediaStore) Save(img Image) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO images (filename, url, original_name, width, height, size, uploaded_at, object_key) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		img.Filename, img.URL, img.OriginalName, img.Width, img.Height, img.Size, img.UploadedAt.UTC().Format(time.RFC3339), img.Key)
	return err
}

// Exists reports whether filename is already indexed.
func (s *MediaStore) Exists(filename string) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM images WHERE filename = ?`, filename).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Get returns the record for filename.
func (s *MediaStore) Get(filename string) (Image, error) {
	row := s.db.QueryRow(`SELECT filename, url, original_name, width, height, size, uploaded_at, object_key FROM images WHERE filename = ?`, filename)
	img, err := scanImage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Image{}, ErrImageNotFound
	}
	return img, err
}

// List returns every image, newest first.
func (s *MediaStore) List() ([]Image, error) {
	rows, err := s.db.Query(`SELECT filename, url, original_name, width, height, size, uploaded_at, object_key FROM images ORDER BY uploaded_at DESC, filename`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// Delete removes filename from the index.
func (s *MediaStore) Delete(filename string) error {
	res, err := s.db.Exec(`DELETE FROM images WHERE filename = ?`, filename)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrImageNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanImage(r scanner) (Image, error) {
	var img Image
	var uploaded string
	if err := r.Scan(&img.Filename, &img.URL, &img.OriginalName, &img.Width, &img.Height, &img.Size, &uploaded, &img.Key); err != nil {
		return Image{}, err
	}
	img.UploadedAt, _ = time.Parse(time.RFC3339, uploaded)
	return img, nil
}
