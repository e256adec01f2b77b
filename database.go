package kndweb

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kindanddivine/kndweb/backup"
	"github.com/kindanddivine/kndweb/views"
)

// restoreFilename is the name the validated database is uploaded under.
const restoreFilename = "restore.db"

// handleBackupDownload streams the backend's gzip'd database to the browser
// without buffering it.
func (a *App) handleBackupDownload(c echo.Context) error {
	b, err := a.API.Backup(c.Request().Context(), Credentials(c))
	if err != nil {
		return a.mutationError(c, views.TabDatabase, err)
	}
	defer b.Body.Close()

	h := c.Response().Header()
	h.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", b.Filename))
	if b.Size > 0 {
		h.Set(echo.HeaderContentLength, strconv.FormatInt(b.Size, 10))
	}
	a.Logger.Info("database backup downloaded", zap.String("filename", b.Filename))
	return c.Stream(http.StatusOK, "application/gzip", b.Body)
}

// handleBackupArchive copies the current backup into the S3 bucket under
// backups/<filename>.
func (a *App) handleBackupArchive(c echo.Context) error {
	if a.bucket == nil {
		return redirectTab(c, views.TabDatabase, "", "S3 is not configured")
	}
	ctx := c.Request().Context()
	b, err := a.API.Backup(ctx, Credentials(c))
	if err != nil {
		return a.mutationError(c, views.TabDatabase, err)
	}
	defer b.Body.Close()

	key, err := a.bucket.Archive(ctx, b.Filename, b.Body)
	if err != nil {
		a.Logger.Error("archive backup", zap.Error(err))
		return redirectTab(c, views.TabDatabase, "", "Archive failed: "+err.Error())
	}
	return redirectTab(c, views.TabDatabase, "Archived to s3://"+a.bucket.Name()+"/"+key, "")
}

// handleRestore extracts the uploaded file, checks that it is an intact
// SQLite database, and only then forwards the raw .db to the backend.
func (a *App) handleRestore(c echo.Context) error {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, backup.MaxUploadBytes+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		return redirectTab(c, views.TabDatabase, "", "Choose a backup file to restore")
	}
	if fh.Size > backup.MaxUploadBytes {
		return redirectTab(c, views.TabDatabase, "", "File too large (max 300MB)")
	}
	upload, err := spoolUpload(fh)
	if err != nil {
		return err
	}
	defer os.Remove(upload)

	ctx := req.Context()
	prepared, err := backup.Prepare(ctx, upload, fh.Filename, "")
	if err != nil {
		a.Logger.Warn("restore rejected", zap.String("filename", fh.Filename), zap.Error(err))
		return redirectTab(c, views.TabDatabase, "", restoreMessage(err))
	}
	defer prepared.Cleanup()

	db, err := os.Open(prepared.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := a.API.Restore(ctx, Credentials(c), restoreFilename, db)
	if err != nil {
		return a.mutationError(c, views.TabDatabase, err)
	}
	a.Cache.Invalidate(ctx)

	msg := res.Message
	if msg == "" {
		msg = "Database restored"
	}
	a.Logger.Info("database restored",
		zap.String("upload", fh.Filename),
		zap.Int64("size", prepared.Report.Size),
		zap.Strings("tables", prepared.Report.Tables))
	return a.renderAdmin(c, views.TabDatabase, &views.RestoreReport{
		Filename: fh.Filename,
		Size:     prepared.Report.Size,
		Tables:   prepared.Report.Tables,
		Message:  msg,
	})
}

// spoolUpload copies a multipart file to a temp file so archive readers
// that need random access (zip) can open it by path.
func spoolUpload(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "kndweb-upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := io.Copy(dst, io.LimitReader(src, backup.MaxUploadBytes+1)); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("save upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return dst.Name(), nil
}

func restoreMessage(err error) string {
	switch {
	case errors.Is(err, backup.ErrNotSQLite):
		return "The file is not a SQLite database"
	case errors.Is(err, backup.ErrEmptyArchive):
		return "The archive contains no database file"
	case errors.Is(err, backup.ErrCorrupt):
		return "The database failed its integrity check"
	case errors.Is(err, backup.ErrTooLarge):
		return "The extracted database is too large"
	}
	return "Restore failed: " + err.Error()
}
