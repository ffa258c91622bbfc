package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/kmanzi/marketclient/internal/models"
	"go.uber.org/zap"
)

const uploadEndpoint = "/products/upload-image"

// UploadImage sends one image file as multipart form data to the upload
// endpoint and returns the URL the server stored it under. Files are
// uploaded individually, never batched; validation of type and size
// happens in the caller before this is reached.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("build multipart form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read image data: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadEndpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	c.setCommonHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", c.connectivityLost(uploadEndpoint, err)
	}
	defer resp.Body.Close()

	var uploaded models.UploadResponse
	if err := c.decodeResponse(resp, uploadEndpoint, &uploaded); err != nil {
		return "", err
	}
	c.log.Info("image uploaded", zap.String("file", filename), zap.String("image_url", uploaded.ImageURL))
	return uploaded.ImageURL, nil
}
