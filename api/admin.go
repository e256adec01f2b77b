package api

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"
)

// Login exchanges a username and password for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (Credentials, error) {
	in := map[string]string{"username": username, "password": password}
	var out LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/login", Credentials{}, in, &out); err != nil {
		return Credentials{}, err
	}
	if out.Token == "" {
		return Credentials{}, fmt.Errorf("login: backend returned no token")
	}
	if out.Username == "" {
		out.Username = username
	}
	return Credentials{Token: out.Token, Username: out.Username}, nil
}

// UpdateCredentials changes the admin username and/or password. The old
// token is invalidated by the backend, so the returned Credentials must
// replace the stored ones.
func (c *Client) UpdateCredentials(ctx context.Context, creds Credentials, upd CredentialsUpdate) (Credentials, string, error) {
	var out CredentialsResponse
	if err := c.doJSON(ctx, http.MethodPut, "/api/admin/credentials", creds, upd, &out); err != nil {
		return Credentials{}, "", err
	}
	next := Credentials{Token: out.Token, Username: out.Username}
	if next.Token == "" {
		next.Token = creds.Token
	}
	if next.Username == "" {
		next.Username = creds.Username
	}
	return next, out.Message, nil
}

// Backup is a streamed database backup download.
type Backup struct {
	Filename string
	Size     int64
	Body     io.ReadCloser
}

// BackupFilename is the name used when the backend sends no Content-Disposition.
func BackupFilename(now time.Time) string {
	return "data.db." + now.UTC().Format("20060102-150405") + ".gz"
}

// Backup requests a gzip'd copy of the backend database. The caller must
// close Body.
func (c *Client) Backup(ctx context.Context, creds Credentials) (*Backup, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/admin/db/backup", creds, nil, "")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/gzip")
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	name := BackupFilename(time.Now())
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if fn := filepath.Base(params["filename"]); fn != "" && fn != "." && fn != "/" {
			name = fn
		}
	}
	return &Backup{Filename: name, Size: resp.ContentLength, Body: resp.Body}, nil
}

// RestoreResult is the backend's answer to a restore upload.
type RestoreResult struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

// Restore uploads a database file as multipart field "file". The body is
// streamed, not buffered.
func (c *Client) Restore(ctx context.Context, creds Credentials, filename string, src io.Reader) (RestoreResult, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(filename))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, src); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/api/admin/db/restore", creds, pr, mw.FormDataContentType())
	if err != nil {
		pr.Close()
		return RestoreResult{}, err
	}
	resp, err := c.send(req)
	if err != nil {
		pr.Close()
		return RestoreResult{}, err
	}
	defer resp.Body.Close()

	var out RestoreResult
	if err := decodeJSON(resp.Body, &out); err != nil {
		return RestoreResult{}, fmt.Errorf("decode restore response: %w", err)
	}
	return out, nil
}
