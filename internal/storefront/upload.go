package storefront

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/classiccarrry/classic-carrry-admin/internal/models"
)

// File is an image selected for upload.
type File struct {
	Name    string
	Content []byte
}

// UploadedImage is one stored image as returned by the upload endpoints.
type UploadedImage struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId,omitempty"`
}

// ValidateUpload checks the client-side preconditions of an upload: a known
// kind, at least one file, the size ceiling of the kind, and image content.
func ValidateUpload(kind models.UploadKind, files []File) error {
	if !kind.Valid() {
		return Invalid("kind", "Unknown upload type %q", kind)
	}
	if len(files) == 0 {
		return Invalid("image", "Please select an image")
	}
	if len(files) > 1 && kind != models.UploadProducts {
		return Invalid("image", "Only one image can be uploaded here")
	}
	limit := kind.MaxBytes()
	for _, f := range files {
		if int64(len(f.Content)) > limit {
			if len(files) > 1 {
				return Invalid("images", "Some images are larger than %dMB", limit/(1024*1024))
			}
			return Invalid("image", "Image size must be less than %dMB", limit/(1024*1024))
		}
		if mt := mimetype.Detect(f.Content); !strings.HasPrefix(mt.String(), "image/") {
			return Invalid("image", "%s is not an image (%s)", f.Name, mt.String())
		}
	}
	return nil
}

// Upload validates and sends files as multipart form data to /upload/<kind>.
// It returns the stored image URLs in upload order.
func (c *Client) Upload(ctx context.Context, kind models.UploadKind, files ...File) ([]string, error) {
	if err := ValidateUpload(kind, files); err != nil {
		return nil, err
	}
	r := c.rest.R().SetContext(ctx)
	for _, f := range files {
		r.SetFileReader(kind.FieldName(), f.Name, bytes.NewReader(f.Content))
	}
	resp, err := c.execute(r, http.MethodPost, "/upload/"+string(kind))
	if err != nil {
		return nil, err
	}

	if kind == models.UploadProducts {
		var out struct {
			Images []UploadedImage `json:"images"`
		}
		if err := resp.Decode(&out); err != nil {
			return nil, fmt.Errorf("parsing upload response: %w", err)
		}
		urls := make([]string, 0, len(out.Images))
		for _, img := range out.Images {
			urls = append(urls, img.URL)
		}
		return urls, nil
	}

	var img UploadedImage
	if err := resp.Decode(&img); err != nil {
		return nil, fmt.Errorf("parsing upload response: %w", err)
	}
	return []string{img.URL}, nil
}
