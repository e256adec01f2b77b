package kndweb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/kindanddivine/kndweb/views"
)

const (
	maxImageWidth = 1600
	jpegQuality   = 85
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

// ErrUnsupportedImage is returned for uploads whose extension is not allowed.
var ErrUnsupportedImage = errors.New("unsupported image type")

var imageExtensions = mapset.NewSet(".jpg", ".jpeg", ".png", ".gif")

// processImage decodes an image from src, resizes it to maxImageWidth when
// wider, and encodes it as JPEG. Returns metadata and the encoded bytes.
func processImage(src io.Reader, originalName string) (Image, []byte, error) {
	if !imageExtensions.Contains(strings.ToLower(filepath.Ext(originalName))) {
		return Image{}, nil, ErrUnsupportedImage
	}
	img, _, err := image.Decode(src)
	if err != nil {
		return Image{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Image{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	name := slugifyFilename(originalName)
	if name == "" {
		name = "image"
	}

	return Image{
		Filename:     name + ".jpg",
		OriginalName: originalName,
		Width:        w,
		Height:       h,
		Size:         buf.Len(),
		UploadedAt:   time.Now().UTC(),
	}, buf.Bytes(), nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	return Slugify(strings.TrimSuffix(name, ext))
}

// ensureUniqueFilename appends a short random suffix while the name is
// taken on disk or in the index.
func (a *App) ensureUniqueFilename(img *Image) error {
	dir := filepath.Join(a.staticDir, uploadsSubdir)
	base := strings.TrimSuffix(img.Filename, ".jpg")
	candidate := img.Filename
	for {
		taken, err := a.Media.Exists(candidate)
		if err != nil {
			return err
		}
		if !taken && a.bucket == nil {
			if _, err := os.Stat(filepath.Join(dir, candidate)); err == nil {
				taken = true
			}
		}
		if !taken {
			img.Filename = candidate
			return nil
		}
		candidate = base + "-" + uuid.NewString()[:8] + ".jpg"
	}
}

// storeImage writes the encoded file to S3 when configured, otherwise under
// <static>/uploads, and fills in the URL.
func (a *App) storeImage(ctx context.Context, img *Image, data []byte) error {
	if a.bucket != nil {
		key := path.Join(uploadsSubdir, img.Filename)
		url, err := a.bucket.Put(ctx, key, "image/jpeg", bytes.NewReader(data))
		if err != nil {
			return err
		}
		img.Key, img.URL = key, url
		return nil
	}
	dir := filepath.Join(a.staticDir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, img.Filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	img.URL = "/public/" + uploadsSubdir + "/" + img.Filename
	return nil
}

func (a *App) removeImage(ctx context.Context, img Image) error {
	if img.Key != "" {
		if a.bucket == nil {
			return fmt.Errorf("image %s is stored in s3 but s3 is not configured", img.Filename)
		}
		return a.bucket.Delete(ctx, img.Key)
	}
	err := os.Remove(filepath.Join(a.staticDir, uploadsSubdir, filepath.Base(img.Filename)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (a *App) handleMediaUpload(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return redirectTab(c, "media", "", "No image file provided")
	}
	if file.Size > maxUploadSize {
		return redirectTab(c, "media", "", "File too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, data, err := processImage(src, file.Filename)
	if err != nil {
		if errors.Is(err, ErrUnsupportedImage) {
			return redirectTab(c, "media", "", "Only jpg, png and gif images are allowed")
		}
		return redirectTab(c, "media", "", "Invalid image: "+err.Error())
	}
	if err := a.ensureUniqueFilename(&img); err != nil {
		return err
	}
	if err := a.storeImage(c.Request().Context(), &img, data); err != nil {
		return err
	}
	if err := a.Media.Save(img); err != nil {
		return err
	}
	a.Logger.Info("image uploaded",
		zap.String("filename", img.Filename),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height))
	return redirectTab(c, "media", "Uploaded "+img.Filename, "")
}

func (a *App) handleMediaDelete(c echo.Context) error {
	filename := c.Param("filename")
	if filename == "" {
		return c.String(http.StatusBadRequest, "Filename required")
	}
	img, err := a.Media.Get(filename)
	if errors.Is(err, ErrImageNotFound) {
		return redirectTab(c, "media", "", "Image not found")
	}
	if err != nil {
		return err
	}
	if err := a.removeImage(c.Request().Context(), img); err != nil {
		a.Logger.Warn("remove image file", zap.String("filename", filename), zap.Error(err))
	}
	if err := a.Media.Delete(filename); err != nil {
		return err
	}
	return redirectTab(c, "media", "Deleted "+filename, "")
}

func (a *App) mediaViews() []views.MediaImage {
	images, err := a.Media.List()
	if err != nil {
		a.Logger.Error("list media", zap.Error(err))
		return nil
	}
	out := make([]views.MediaImage, len(images))
	for i, img := range images {
		out[i] = img.View()
	}
	return out
}
