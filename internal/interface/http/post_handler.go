package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-backend/internal/application"
	"github.com/oksasatya/go-ecommerce-backend/pkg/apperror"
	"github.com/oksasatya/go-ecommerce-backend/pkg/response"
	"github.com/oksasatya/go-ecommerce-backend/pkg/validation"
)

type PostHandler struct {
	Svc            PostUseCase
	Logger         *logrus.Logger
	MaxUploadBytes int64
}

func NewPostHandler(svc PostUseCase, logger *logrus.Logger, maxUploadBytes int64) *PostHandler {
	return &PostHandler{Svc: svc, Logger: logger, MaxUploadBytes: maxUploadBytes}
}

// postForm is the multipart body of create and update; the file part is "image".
type postForm struct {
	Title           string   `form:"title"`
	Description     string   `form:"description"`
	Category        string   `form:"category"`
	Price           *float64 `form:"price" binding:"omitempty,money"`
	DiscountPercent *float64 `form:"discountPercentage" binding:"omitempty,percent"`
	Stock           *int     `form:"stock" binding:"omitempty,qty"`
	InStock         *bool    `form:"inStock"`
}

func (f postForm) input() application.PostInput {
	return application.PostInput{
		Title:           f.Title,
		Description:     f.Description,
		Category:        f.Category,
		Price:           f.Price,
		DiscountPercent: f.DiscountPercent,
		Stock:           f.Stock,
		InStock:         f.InStock,
	}
}

// readPostForm parses the multipart body. The returned closer releases the image file.
func (h *PostHandler) readPostForm(c *gin.Context) (postForm, *application.ImageUpload, func(), error) {
	var form postForm
	noop := func() {}
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return form, nil, noop, apperror.Unprocessable("Image exceeds the upload size limit")
		}
		return form, nil, noop, apperror.Validation("invalid payload", validation.ToDetails(err))
	}

	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return form, nil, noop, nil
		}
		return form, nil, noop, apperror.Validation("invalid image upload", nil)
	}
	img, closer, err := openImage(fh)
	if err != nil {
		return form, nil, noop, apperror.Validation("invalid image upload", nil)
	}
	return form, img, closer, nil
}

func openImage(fh *multipart.FileHeader) (*application.ImageUpload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &application.ImageUpload{
		Reader:      f,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
	}, func() { _ = f.Close() }, nil
}

// Create POST /api/posts
func (h *PostHandler) Create(c *gin.Context) {
	form, img, done, err := h.readPostForm(c)
	defer done()
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), currentUser(c), form.input(), img)
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toPost(p), "Post created successfully", nil)
}

// Update PUT /api/posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	form, img, done, err := h.readPostForm(c)
	defer done()
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), currentUser(c), c.Param("id"), form.input(), img)
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPost(p), "Post updated successfully", nil)
}

// Delete DELETE /api/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	p, err := h.Svc.Delete(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPost(p), "Post deleted successfully", nil)
}

// Get GET /api/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPost(p), "Post retrieved", nil)
}

// ListMine GET /api/posts
func (h *PostHandler) ListMine(c *gin.Context) {
	posts, err := h.Svc.ListMine(c.Request.Context(), currentUser(c))
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPosts(posts), "Posts retrieved", map[string]any{"count": len(posts)})
}

// DeleteAllMine DELETE /api/posts
func (h *PostHandler) DeleteAllMine(c *gin.Context) {
	posts, err := h.Svc.DeleteAllMine(c.Request.Context(), currentUser(c))
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	msg := "All posts deleted"
	if len(posts) == 0 {
		msg = "No posts to delete"
	}
	response.Success(c, http.StatusOK, gin.H{"deletedCount": len(posts)}, msg, nil)
}

// Search GET /api/posts/search?q=&size=
func (h *PostHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	posts, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		response.FromError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPosts(posts), "Search results", map[string]any{"count": len(posts)})
}
