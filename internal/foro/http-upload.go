// Загрузка изображений и PDF для постов. Файл сохраняется в Minio, если он настроен,
// иначе пересылается во внешний сервис загрузки.
package foro

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/aisa-it/foro/internal/foro/apierrors"
	filestorage "github.com/aisa-it/foro/internal/foro/file-storage"
)

type UploadResponse struct {
	FileURL string `json:"fileUrl"`
}

func (s *Services) AddUploadServices(g *echo.Group) {
	// запас в 1MB на заголовки multipart
	bodyLimit := middleware.BodyLimit(fmt.Sprintf("%dM", s.cfg.UploadMaxMB+1))
	g.POST("upload/", s.uploadFile, bodyLimit, RequireUser)
}

func allowedContentType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || contentType == "application/pdf"
}

// uploadFile godoc
// POST /api/upload/
func (s *Services) uploadFile(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return EErrorDefined(c, apierrors.ErrFileRequired)
	}
	if fileHeader.Size > s.cfg.UploadMaxBytes() {
		return EErrorDefined(c, apierrors.ErrFileTooLarge.WithFormattedMessage(s.cfg.UploadMaxMB))
	}

	f, err := fileHeader.Open()
	if err != nil {
		return EError(c, err)
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return EError(c, err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if !allowedContentType(contentType) {
		return EErrorDefined(c, apierrors.ErrFileTypeRejected)
	}

	url, err := s.storage.Save(c.Request().Context(), filestorage.File{
		Name:        fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: contentType,
		Reader:      io.MultiReader(bytes.NewReader(head), f),
	})
	if err != nil {
		slog.Error("Save uploaded file", "name", fileHeader.Filename, "user", requestUser(c), "err", err)
		return EErrorDefined(c, apierrors.ErrUploadFailed)
	}
	return c.JSON(http.StatusOK, UploadResponse{FileURL: url})
}
