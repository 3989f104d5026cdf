package application

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	repo "github.com/oksasatya/go-ecommerce-backend/internal/domain/repository"
	"github.com/oksasatya/go-ecommerce-backend/pkg/apperror"
)

type PostService struct {
	Posts  repo.PostRepository
	Media  MediaStore
	Index  PostIndex // optional
	Folder string
	Logger *logrus.Logger
}

func NewPostService(posts repo.PostRepository, media MediaStore, index PostIndex, folder string, logger *logrus.Logger) *PostService {
	return &PostService{Posts: posts, Media: media, Index: index, Folder: folder, Logger: logger}
}

// PostInput carries optional fields; nil or empty means "keep" on update.
type PostInput struct {
	Title           string
	Description     string
	Category        string
	Price           *float64
	DiscountPercent *float64
	Stock           *int
	InStock         *bool
}

// ImageUpload is a multipart file handed to the media store.
type ImageUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

func checkImage(img *ImageUpload) error {
	if !allowedImageTypes[strings.ToLower(img.ContentType)] {
		return apperror.Unprocessable("Image must be a jpg, png or gif file")
	}
	return nil
}

func applyPostInput(p *entity.Post, in PostInput) error {
	if t := strings.TrimSpace(in.Title); t != "" {
		p.Title = t
	}
	if d := strings.TrimSpace(in.Description); d != "" {
		p.Description = d
	}
	if c := strings.TrimSpace(in.Category); c != "" {
		p.Category = c
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return apperror.Validation("Price must be greater than or equal to 0", nil)
		}
		p.Reprice(*in.Price)
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return apperror.Validation("Stock cannot be negative", nil)
		}
		p.Stock = *in.Stock
	}
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	if in.DiscountPercent != nil {
		if err := p.ApplyDiscount(*in.DiscountPercent); err != nil {
			return apperror.Validation(err.Error(), nil)
		}
	} else if p.DiscountPrice > p.Price {
		p.DiscountPrice = p.Price
	}
	return nil
}

// Create uploads the image first and removes it again if the row cannot be written.
func (s *PostService) Create(ctx context.Context, userID string, in PostInput, img *ImageUpload) (*entity.Post, error) {
	if img == nil {
		return nil, apperror.Validation("No image file received", nil)
	}
	var missing []string
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return nil, apperror.MissingFields(missing)
	}
	if err := checkImage(img); err != nil {
		return nil, err
	}

	p := &entity.Post{UserID: userID, InStock: true}
	if err := applyPostInput(p, in); err != nil {
		return nil, err
	}

	obj, err := s.Media.Upload(ctx, s.Folder, img.Reader, img.Filename, img.ContentType)
	if err != nil {
		return nil, apperror.Gateway("Image upload failed", err)
	}
	p.ImageURL, p.ImageMediaID = obj.URL, obj.ID

	if err := s.Posts.Create(ctx, p); err != nil {
		s.deleteMedia(ctx, obj.ID, "")
		return nil, apperror.Internal("create post", err)
	}
	s.index(ctx, p)
	return p, nil
}

// Update edits an owned post; a new image replaces the old one.
func (s *PostService) Update(ctx context.Context, userID, postID string, in PostInput, img *ImageUpload) (*entity.Post, error) {
	p, err := s.owned(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if err := applyPostInput(p, in); err != nil {
		return nil, err
	}

	oldMedia := ""
	if img != nil {
		if err := checkImage(img); err != nil {
			return nil, err
		}
		obj, err := s.Media.Upload(ctx, s.Folder, img.Reader, img.Filename, img.ContentType)
		if err != nil {
			return nil, apperror.Gateway("Image upload failed", err)
		}
		oldMedia = p.ImageMediaID
		p.ImageURL, p.ImageMediaID = obj.URL, obj.ID
	}

	if err := s.Posts.Update(ctx, p); err != nil {
		if img != nil {
			s.deleteMedia(ctx, p.ImageMediaID, p.ID)
		}
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound("Post not found")
		}
		return nil, apperror.Internal("update post", err)
	}
	if oldMedia != "" {
		s.deleteMedia(ctx, oldMedia, p.ID)
	}
	s.index(ctx, p)
	return p, nil
}

func (s *PostService) Delete(ctx context.Context, userID, postID string) (*entity.Post, error) {
	p, err := s.owned(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if err := s.Posts.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound("Post not found")
		}
		return nil, apperror.Internal("delete post", err)
	}
	s.deleteMedia(ctx, p.ImageMediaID, p.ID)
	s.unindex(ctx, p.ID)
	return p, nil
}

func (s *PostService) Get(ctx context.Context, userID, postID string) (*entity.Post, error) {
	return s.owned(ctx, userID, postID)
}

func (s *PostService) ListMine(ctx context.Context, userID string) ([]entity.Post, error) {
	posts, err := s.Posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("list posts", err)
	}
	return posts, nil
}

// DeleteAllMine removes every post of the user and their images.
func (s *PostService) DeleteAllMine(ctx context.Context, userID string) ([]entity.Post, error) {
	posts, err := s.Posts.DeleteByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("delete posts", err)
	}
	for _, p := range posts {
		s.deleteMedia(ctx, p.ImageMediaID, p.ID)
		s.unindex(ctx, p.ID)
	}
	return posts, nil
}

// Search queries the catalog index; without an index it returns nothing.
func (s *PostService) Search(ctx context.Context, q string, size int) ([]entity.Post, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.Validation("Query is required", map[string]string{"q": "is required"})
	}
	if s.Index == nil {
		return []entity.Post{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	posts, err := s.Index.Search(ctx, q, size)
	if err != nil {
		return nil, apperror.Gateway("Search is unavailable", err)
	}
	return posts, nil
}

func (s *PostService) owned(ctx context.Context, userID, postID string) (*entity.Post, error) {
	if !validID(postID) {
		return nil, apperror.NotFound("Post not found")
	}
	p, err := s.Posts.GetOwned(ctx, postID, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound("Post not found")
		}
		return nil, apperror.Internal("load post", err)
	}
	return p, nil
}

func (s *PostService) deleteMedia(ctx context.Context, mediaID, postID string) {
	if mediaID == "" || s.Media == nil {
		return
	}
	if err := s.Media.Delete(ctx, mediaID); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"media_id": mediaID, "post_id": postID}).Warn("media delete failed")
	}
}

func (s *PostService) index(ctx context.Context, p *entity.Post) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, p); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("post_id", p.ID).Warn("es index failed")
	}
}

func (s *PostService) unindex(ctx context.Context, id string) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Remove(ctx, id); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("post_id", id).Warn("es delete failed")
	}
}
