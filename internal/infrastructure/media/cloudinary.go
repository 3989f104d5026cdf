package media

import (
	"context"
	"errors"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/oksasatya/go-ecommerce-backend/internal/application"
)

// Cloudinary stores images in a Cloudinary account. The media id is the public id.
type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinary(url string) (*Cloudinary, error) {
	if url == "" {
		return nil, errors.New("CLOUDINARY_URL is empty")
	}
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, err
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, folder string, r io.Reader, _, _ string) (application.MediaObject, error) {
	res, err := c.cld.Upload.Upload(ctx, r, uploader.UploadParams{Folder: folder})
	if err != nil {
		return application.MediaObject{}, err
	}
	if res.Error.Message != "" {
		return application.MediaObject{}, errors.New(res.Error.Message)
	}
	return application.MediaObject{URL: res.SecureURL, ID: res.PublicID}, nil
}

func (c *Cloudinary) Delete(ctx context.Context, id string) error {
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id})
	if err != nil {
		return err
	}
	if res.Error.Message != "" {
		return errors.New(res.Error.Message)
	}
	return nil
}
