package products

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/kmanzi/marketclient/internal/api"
	"github.com/kmanzi/marketclient/internal/ui"
	"github.com/kmanzi/marketclient/internal/validate"
	"go.uber.org/zap"
)

// maxImageSize is the per-file upload cap.
const maxImageSize = 5 << 20

// allowedImageTypes is the sniffed-MIME allow-list for uploads.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// StagedImage is one entry of the form-scoped uploaded-image sequence:
// the server URL paired with the local preview details, which come from
// the file itself rather than the upload round trip.
type StagedImage struct {
	ID   string
	URL  string
	Name string
	Size int64
}

// Preview is the local rendering of a staged image.
func (s StagedImage) Preview() string {
	if s.Size == 0 {
		return s.Name
	}
	return fmt.Sprintf("%s (%d bytes)", s.Name, s.Size)
}

func stagedFromURLs(urls []string) []StagedImage {
	staged := make([]StagedImage, 0, len(urls))
	for _, u := range urls {
		staged = append(staged, StagedImage{ID: uuid.NewString(), URL: u, Name: path.Base(u)})
	}
	return staged
}

// Staged reports the current staged image sequence.
func (m *Manager) Staged() []StagedImage { return m.staged }

// StagedURLs reports the staged image URLs in upload order.
func (m *Manager) StagedURLs() []string {
	urls := make([]string, 0, len(m.staged))
	for _, s := range m.staged {
		urls = append(urls, s.URL)
	}
	return urls
}

// Previews reports the local preview strings in upload order.
func (m *Manager) Previews() []string {
	previews := make([]string, 0, len(m.staged))
	for _, s := range m.staged {
		previews = append(previews, s.Preview())
	}
	return previews
}

// StageImages validates and uploads each file in turn. A rejected or
// failed file surfaces a toast and is skipped; the rest still upload.
func (m *Manager) StageImages(ctx context.Context, paths []string) {
	for _, p := range paths {
		_ = m.StageImage(ctx, p)
	}
}

// StageImage validates one local file and, when it passes, uploads it and
// appends the returned URL to the staged sequence. Files of a disallowed
// type or above the size cap are rejected before any upload call is made.
func (m *Manager) StageImage(ctx context.Context, filePath string) error {
	name := filepath.Base(filePath)

	info, err := os.Stat(filePath)
	if err != nil {
		m.view.Toast(ui.ToastError, fmt.Sprintf("Cannot read file %s", name))
		return validate.ErrInvalid
	}
	if info.Size() > maxImageSize {
		m.view.Toast(ui.ToastError, fmt.Sprintf("File %s is too large. Max 5MB.", name))
		return validate.ErrInvalid
	}

	f, err := os.Open(filePath)
	if err != nil {
		m.view.Toast(ui.ToastError, fmt.Sprintf("Cannot read file %s", name))
		return validate.ErrInvalid
	}
	defer f.Close()

	if !sniffIsImage(f) {
		m.view.Toast(ui.ToastError, "Invalid file type. Please upload images only.")
		return validate.ErrInvalid
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		m.view.Toast(ui.ToastError, fmt.Sprintf("Cannot read file %s", name))
		return validate.ErrInvalid
	}

	m.view.StartLoading()
	defer m.view.StopLoading()

	imageURL, err := m.api.UploadImage(ctx, name, f)
	if err != nil {
		m.log.Warn("image upload failed", zap.String("file", name), zap.Error(err))
		if !api.IsAuth(err) {
			m.view.Toast(ui.ToastError, "Failed to upload image")
		}
		return err
	}

	m.staged = append(m.staged, StagedImage{
		ID:   uuid.NewString(),
		URL:  imageURL,
		Name: name,
		Size: info.Size(),
	})
	m.view.Toast(ui.ToastSuccess, "Image uploaded successfully!")
	m.view.StagedImages(m.Previews())
	return nil
}

// RemoveImage drops exactly the staged entry holding imageURL.
func (m *Manager) RemoveImage(imageURL string) {
	kept := m.staged[:0]
	removed := false
	for _, s := range m.staged {
		if !removed && s.URL == imageURL {
			removed = true
			continue
		}
		kept = append(kept, s)
	}
	m.staged = kept
	if removed {
		m.view.Toast(ui.ToastSuccess, "Image removed")
		m.view.StagedImages(m.Previews())
	}
}

// ResetUpload discards the staged sequence when the form closes or
// submits.
func (m *Manager) ResetUpload() { m.staged = nil }

// sniffIsImage checks the file's leading bytes against the image
// allow-list. WebP sniffs as generic RIFF in older detectors, so the
// container header is checked explicitly.
func sniffIsImage(f *os.File) bool {
	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return false
	}
	buf = buf[:n]
	contentType := http.DetectContentType(buf)
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if allowedImageTypes[contentType] {
		return true
	}
	return len(buf) >= 12 && string(buf[0:4]) == "RIFF" && string(buf[8:12]) == "WEBP"
}
