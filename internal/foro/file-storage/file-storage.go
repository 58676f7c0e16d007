// Пакет предоставляет интерфейс и реализации хранилища файлов, прикрепляемых к постам и анонсам
// (изображения и PDF). Файл сохраняется либо в Minio, либо пересылается во внешний сервис загрузки.
package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gofrs/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var ErrEmptyFileURL = errors.New("upload service returned empty fileUrl")

// File - загружаемый файл.
type File struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

type FileStorage interface {
	// Save сохраняет файл и возвращает его публичный адрес.
	Save(ctx context.Context, file File) (string, error)
	Delete(ctx context.Context, name string) error
}

// ObjectName возвращает уникальное имя объекта с расширением исходного файла.
func ObjectName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return uuid.Must(uuid.NewV4()).String() + ext
}

type MinioStorage struct {
	client     *minio.Client
	bucketName string
	publicURL  string
}

func (s *MinioStorage) Save(ctx context.Context, file File) (string, error) {
	name := ObjectName(file.Name)
	_, err := s.client.PutObject(ctx,
		s.bucketName,
		name,
		file.Reader,
		file.Size,
		minio.PutObjectOptions{
			ContentType:  file.ContentType,
			UserMetadata: map[string]string{"original-name": file.Name},
		},
	)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		slog.Error("Upload file to minio", "name", name, "code", resp.StatusCode, "msg", resp.Message, "err", err)
		return "", err
	}
	return strings.TrimSuffix(s.publicURL, "/") + "/" + name, nil
}

func (s *MinioStorage) Delete(ctx context.Context, name string) error {
	return s.client.RemoveObject(ctx, s.bucketName, name, minio.RemoveObjectOptions{})
}

// Exist проверяет наличие объекта в бакете.
func (s *MinioStorage) Exist(ctx context.Context, name string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucketName, name, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// NewMinioStorage подключается к Minio и создает бакет, если его нет.
func NewMinioStorage(ctx context.Context, endpoint, accessKeyID, secretAccessKey string, useSSL bool, bucketName, publicURL string) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return &MinioStorage{client: client, bucketName: bucketName, publicURL: publicURL}, nil
}

// RemoteStorage пересылает файл во внешний сервис загрузки (multipart поле file),
// который отвечает {"fileUrl": "..."}.
type RemoteStorage struct {
	http      *resty.Client
	uploadURL string
}

func NewRemoteStorage(uploadURL string, timeout time.Duration) *RemoteStorage {
	httpClient := resty.New()
	httpClient.SetTimeout(timeout)
	httpClient.SetHeader("User-Agent", "Foro/1.0")
	return &RemoteStorage{http: httpClient, uploadURL: uploadURL}
}

func (s *RemoteStorage) Save(ctx context.Context, file File) (string, error) {
	var result struct {
		FileURL string `json:"fileUrl"`
	}

	resp, err := s.http.R().
		SetContext(ctx).
		SetMultipartField("file", file.Name, file.ContentType, file.Reader).
		SetResult(&result).
		Post(s.uploadURL)
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("upload service: %s: %s", resp.Status(), strings.TrimSpace(string(resp.Body())))
	}
	if result.FileURL == "" {
		return "", ErrEmptyFileURL
	}
	return result.FileURL, nil
}

// Delete не поддерживается внешним сервисом загрузки.
func (s *RemoteStorage) Delete(ctx context.Context, name string) error {
	return errors.ErrUnsupported
}
