package filestorage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	a := ObjectName("Foto.PNG")
	b := ObjectName("Foto.PNG")
	assert.True(t, strings.HasSuffix(a, ".png"))
	assert.NotEqual(t, a, b)
	assert.Len(t, ObjectName("noext"), 36)
}

func TestRemoteStorage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)

		assert.Equal(t, "foto.png", header.Filename)
		assert.Equal(t, "png-bytes", string(data))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"fileUrl":"http://files.local/uploads/foto.png"}`))
	}))
	defer srv.Close()

	s := NewRemoteStorage(srv.URL+"/upload", time.Second)
	url, err := s.Save(context.Background(), File{
		Name:        "foto.png",
		ContentType: "image/png",
		Size:        9,
		Reader:      strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://files.local/uploads/foto.png", url)
}

func TestRemoteStorageErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "disk full", http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := NewRemoteStorage(srv.URL, time.Second).Save(context.Background(), File{Name: "a.pdf", Reader: strings.NewReader("x")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("empty url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		_, err := NewRemoteStorage(srv.URL, time.Second).Save(context.Background(), File{Name: "a.pdf", Reader: strings.NewReader("x")})
		assert.ErrorIs(t, err, ErrEmptyFileURL)
	})
}
