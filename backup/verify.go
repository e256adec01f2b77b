package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrCorrupt is returned when PRAGMA integrity_check reports problems.
var ErrCorrupt = errors.New("database failed integrity check")

// Report describes a verified database file.
type Report struct {
	Size      int64
	Integrity string
	Tables    []string
}

// Verify opens the database at path and runs PRAGMA integrity_check. The
// file is never modified.
func Verify(ctx context.Context, path string) (Report, error) {
	var rep Report
	if err := CheckHeader(path); err != nil {
		return rep, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return rep, err
	}
	rep.Size = info.Size()

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return rep, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	rows, err := db.QueryContext(ctx, `PRAGMA integrity_check`)
	if err != nil {
		return rep, fmt.Errorf("integrity check: %w", err)
	}
	var problems []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			rows.Close()
			return rep, err
		}
		problems = append(problems, line)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return rep, fmt.Errorf("integrity check: %w", err)
	}
	rep.Integrity = strings.Join(problems, "; ")
	if rep.Integrity != "ok" {
		return rep, fmt.Errorf("%w: %s", ErrCorrupt, rep.Integrity)
	}

	rows, err = db.QueryContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return rep, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return rep, err
		}
		rep.Tables = append(rep.Tables, name)
	}
	return rep, rows.Err()
}

// Prepared is an extracted and verified database ready to upload.
type Prepared struct {
	Path   string
	Report Report
}

// Cleanup removes the extracted file.
func (p *Prepared) Cleanup() {
	if p != nil && p.Path != "" {
		os.Remove(p.Path)
	}
}

// Prepare extracts the upload at src, named name by the client, and
// verifies the result. Temp files go to dir, or the OS default when empty.
func Prepare(ctx context.Context, src, name, dir string) (*Prepared, error) {
	path, err := Extract(src, name, dir)
	if err != nil {
		return nil, err
	}
	rep, err := Verify(ctx, path)
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	return &Prepared{Path: path, Report: rep}, nil
}
