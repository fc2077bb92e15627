package http

import (
	"errors"
	"net/http"

	"live-quiz-service/internal/domain"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for the form envelope around the image part.
const multipartOverhead = 1 << 20

func (h *Handler) UploadImage(c *gin.Context) {
	if limit := h.images.MaxBytes(); limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
	}
	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, "upload image", domain.ErrFileTooLarge)
			return
		}
		writeError(c, "upload image", domain.ErrNoFile)
		return
	}

	src, err := file.Open()
	if err != nil {
		writeError(c, "upload image", err)
		return
	}
	defer src.Close()

	url, err := h.images.Save(file.Filename, file.Header.Get("Content-Type"), file.Size, src)
	if err != nil {
		writeError(c, "upload image", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": url})
}

func (h *Handler) ListUploads(c *gin.Context) {
	files, err := h.images.List()
	if err != nil {
		writeError(c, "list uploads", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"uploadsDir": h.images.Dir(),
		"files":      files,
		"count":      len(files),
	})
}
