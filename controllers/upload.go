package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/meinhoongagan/findam/middleware"
	"github.com/meinhoongagan/findam/services"
	"github.com/meinhoongagan/findam/utils"
)

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
}

var errUploadsDisabled = errors.New("image uploads are not configured")

type UploadController struct {
	uploader Uploader
}

// NewUploadController accepts a nil uploader; uploads then fail with a server error.
func NewUploadController(uploader Uploader) *UploadController {
	return &UploadController{uploader: uploader}
}

// Upload accepts one image in the multipart field "file".
func (h *UploadController) Upload(c *fiber.Ctx) error {
	if h.uploader == nil {
		return middleware.Abort(c, services.ErrInternal(errUploadsDisabled))
	}

	file, err := c.FormFile("file")
	if err != nil {
		return middleware.Abort(c, services.ErrValidation("No file uploaded", "file"))
	}
	if file.Size > utils.MaxUploadSize {
		return middleware.Abort(c, services.ErrValidation(
			fmt.Sprintf("file must be at most %d MB", utils.MaxUploadSize>>20), "file"))
	}
	if !utils.AllowedImageType(file.Header.Get(fiber.HeaderContentType)) {
		return middleware.Abort(c, services.ErrValidation("only JPEG, PNG and WebP images are allowed", "file"))
	}

	src, err := file.Open()
	if err != nil {
		return middleware.Abort(c, services.ErrInternal(err))
	}
	defer src.Close()

	url, err := h.uploader.Upload(c.UserContext(), src, file.Filename)
	if err != nil {
		return middleware.Abort(c, services.ErrInternal(err))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"url":     url,
	})
}
