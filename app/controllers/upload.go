package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// multipartOverhead leaves room for the form fields and boundaries around
// the image itself.
const multipartOverhead = 1 << 20

var (
	ErrImageTooLarge = errors.New("image is too large")
	ErrNotAnImage    = errors.New("only image files are allowed")
	ErrBadUpload     = errors.New("malformed upload")

	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

	// imageExtensions lists the accepted content types and the extension a
	// stored file gets for each. Scriptable formats such as SVG are left out.
	imageExtensions = map[string]string{
		"image/jpeg": ".jpg",
		"image/png":  ".png",
		"image/gif":  ".gif",
		"image/webp": ".webp",
	}
)

// Uploader saves multipart image attachments to a directory and hands back
// the stored filename. Files are served back from /uploads/<filename>.
type Uploader struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

// NewUploader creates an Uploader writing into dir.
func NewUploader(dir string, maxBytes int64) *Uploader {
	return &Uploader{dir: dir, maxBytes: maxBytes, now: time.Now}
}

// Dir is the directory uploads are written to.
func (u *Uploader) Dir() string {
	return u.dir
}

// Save stores the file in field and returns its filename. A request without
// that file yields an empty name and no error.
func (u *Uploader) Save(w http.ResponseWriter, r *http.Request, field string) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, u.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(u.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return "", ErrImageTooLarge
		}
		return "", fmt.Errorf("%w: %v", ErrBadUpload, err)
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadUpload, err)
	}
	defer file.Close()

	if header.Size > u.maxBytes {
		return "", ErrImageTooLarge
	}

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadUpload, err)
	}
	ext, ok := imageExtensions[mtype.String()]
	if !ok {
		return "", ErrNotAnImage
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	if err := os.MkdirAll(u.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := fmt.Sprintf("%d-%s", u.now().UnixNano(), sanitizeFilename(header.Filename, ext))
	dst, err := os.OpenFile(filepath.Join(u.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create upload: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return name, nil
}

// Remove deletes a stored upload. Removing nothing is not an error.
func (u *Uploader) Remove(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(u.dir, filepath.Base(name)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// sanitizeFilename keeps a safe stem of the client's name and always uses
// ext, the extension of the detected content type.
func sanitizeFilename(name, ext string) string {
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Trim(unsafeFilenameChars.ReplaceAllString(base, "-"), ".-")
	if len(base) > 100 {
		base = base[len(base)-100:]
	}
	if base == "" {
		base = "image"
	}
	return base + ext
}
