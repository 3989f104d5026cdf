// Package media provides the image stores behind application.MediaStore.
package media

import (
	"context"
	"fmt"

	"github.com/oksasatya/go-ecommerce-backend/config"
	"github.com/oksasatya/go-ecommerce-backend/internal/application"
	"github.com/oksasatya/go-ecommerce-backend/pkg/helpers"
)

// New picks the store named by cfg.MediaDriver.
func New(ctx context.Context, cfg *config.Config) (application.MediaStore, error) {
	switch cfg.MediaDriver {
	case "", "cloudinary":
		return NewCloudinary(cfg.CloudinaryURL)
	case "gcs":
		client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath, cfg.AppName)
		if err != nil {
			return nil, err
		}
		return NewGCS(client, cfg.GCSBucket)
	default:
		return nil, fmt.Errorf("unknown media driver %q", cfg.MediaDriver)
	}
}
