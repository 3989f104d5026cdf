package media

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/oksasatya/go-ecommerce-backend/internal/application"
	"github.com/oksasatya/go-ecommerce-backend/pkg/helpers"
)

// GCS stores images in a bucket. The media id is the object path.
type GCS struct {
	client *storage.Client
	bucket string
}

func NewGCS(client *storage.Client, bucket string) (*GCS, error) {
	if client == nil || bucket == "" {
		return nil, errors.New("gcs not configured")
	}
	return &GCS{client: client, bucket: bucket}, nil
}

func (g *GCS) Upload(ctx context.Context, folder string, r io.Reader, filename, contentType string) (application.MediaObject, error) {
	objectPath := ObjectPath(folder, filename)
	url, err := helpers.UploadObject(ctx, g.client, g.bucket, objectPath, contentType, r)
	if err != nil {
		return application.MediaObject{}, err
	}
	return application.MediaObject{URL: url, ID: objectPath}, nil
}

func (g *GCS) Delete(ctx context.Context, id string) error {
	return helpers.DeleteObject(ctx, g.client, g.bucket, id)
}

// ObjectPath builds folder/<uuid><ext> keeping the lowercased extension of filename.
func ObjectPath(folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(strings.Trim(folder, "/"), uuid.NewString()+ext)
}
