package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// ClothesService handles wardrobe item API calls
type ClothesService struct {
	client *Client
}

// Upload sends a photo with its metadata as a multipart form
func (s *ClothesService) Upload(ctx context.Context, req UploadRequest) (*UploadConfirmation, error) {
	const op = "upload_clothing"

	body, contentType, err := buildUploadForm(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Op: op, Err: err}
	}

	resp, err := s.client.do(ctx, op, http.MethodPost, "/clothes", contentType, body)
	if err != nil {
		return nil, err
	}
	if err := expectSuccess(op, resp); err != nil {
		return nil, err
	}

	var confirmation UploadConfirmation
	if err := decode(op, resp, &confirmation); err != nil {
		return nil, err
	}
	return &confirmation, nil
}

func buildUploadForm(req UploadRequest) (io.Reader, string, error) {
	file, err := os.Open(req.ImagePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"category", req.Category},
		{"color", req.Color},
		{"material", req.Material},
		{"occasion", req.Occasion},
	}
	for _, f := range fields {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q`, f.name))
		h.Set("Content-Type", "text/plain; charset=utf-8")
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.WriteString(part, f.value); err != nil {
			return nil, "", err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filepath.Base(req.ImagePath)))
	h.Set("Content-Type", "image/jpeg")
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// List retrieves wardrobe items. An empty wardrobe is a successful empty list.
func (s *ClothesService) List(ctx context.Context, filter *WardrobeFilter) ([]ClothingItem, error) {
	const op = "list_clothes"

	query := url.Values{}
	if filter != nil {
		if v := strings.TrimSpace(filter.Occasion); v != "" {
			query.Set("occasion", v)
		}
		if v := strings.TrimSpace(filter.Preferences); v != "" {
			query.Set("preferences", v)
		}
	}

	path := "/clothes"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	resp, err := s.client.doJSON(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if err := expectSuccess(op, resp); err != nil {
		return nil, err
	}

	items := []ClothingItem{}
	if err := decode(op, resp, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []ClothingItem{}
	}
	return items, nil
}

// Delete removes an item by id. A non-2xx status yields false without an
// error; only transport failures are returned as errors.
func (s *ClothesService) Delete(ctx context.Context, id int) (bool, error) {
	const op = "delete_clothing"

	path := fmt.Sprintf("/clothes/%d", id)
	resp, err := s.client.doJSON(ctx, op, http.MethodDelete, path, nil)
	if err != nil {
		return false, err
	}
	return resp.ok(), nil
}
