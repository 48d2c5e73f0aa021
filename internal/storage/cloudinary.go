package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ImageStore keeps uploaded images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
	Delete(ctx context.Context, imageURL string) error
}

// Cloudinary stores images under a fixed folder of one cloud account.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinary(cloudName, apiKey, apiSecret, folder string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary config error: %w", err)
	}
	return &Cloudinary{cld: cld, folder: folder}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	resp, err := c.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:   c.folder,
		PublicID: strings.TrimSuffix(path.Base(filename), path.Ext(filename)),
	})
	if err != nil {
		return "", fmt.Errorf("upload error: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("upload error: %s", resp.Error.Message)
	}
	return resp.SecureURL, nil
}

// Delete removes the image behind a Cloudinary delivery URL. URLs that do
// not point at Cloudinary are ignored.
func (c *Cloudinary) Delete(ctx context.Context, imageURL string) error {
	publicID, err := extractPublicID(imageURL)
	if errors.Is(err, errNotCloudinary) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not extract public ID: %w", err)
	}

	if _, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("delete error: %w", err)
	}
	return nil
}

var (
	errNotCloudinary = errors.New("not a cloudinary delivery url")
	versionSegment   = regexp.MustCompile(`^v\d+$`)
)

// extractPublicID turns
// https://res.cloudinary.com/demo/image/upload/v1234567890/profiles/abc123.jpg
// into profiles/abc123.
func extractPublicID(imageURL string) (string, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(parsed.Host, "cloudinary.com") {
		return "", errNotCloudinary
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	upload := -1
	for i, p := range parts {
		if p == "upload" {
			upload = i
			break
		}
	}
	if upload < 0 || upload+1 >= len(parts) {
		return "", fmt.Errorf("invalid cloudinary URL format")
	}

	rest := parts[upload+1:]
	if versionSegment.MatchString(rest[0]) {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return "", fmt.Errorf("invalid cloudinary URL format")
	}

	joined := path.Join(rest...)
	return strings.TrimSuffix(joined, path.Ext(joined)), nil
}
