// Серверный рендер страницы поста для поисковиков и предпросмотра ссылок. Пост, комментарии
// и оценки запрашиваются из API параллельно.
package foro

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
	"golang.org/x/sync/errgroup"

	"github.com/aisa-it/foro/internal/foro/apierrors"
	"github.com/aisa-it/foro/internal/foro/backend"
	"github.com/aisa-it/foro/internal/foro/dto"
	"github.com/aisa-it/foro/internal/foro/types"
)

//go:embed templates/*
var pageTemplates embed.FS

var minifier *minify.M = minify.New()

type postPageData struct {
	Post     dto.Post
	Comments []dto.Comment
	Ratings  dto.RatingSummary
}

// loadPostTemplate читает встроенный шаблон страницы поста и минифицирует его.
// Ошибка минификации не критична: используется исходный шаблон.
func loadPostTemplate() (*template.Template, error) {
	minifier.Add("text/html", &html.Minifier{
		KeepDocumentTags: true,
		KeepEndTags:      true,
		KeepQuotes:       true,
		TemplateDelims:   html.GoTemplateDelims,
	})

	data, err := pageTemplates.ReadFile("templates/post.html")
	if err != nil {
		return nil, err
	}

	if minified, err := minifier.Bytes("text/html", data); err != nil {
		slog.Warn("Error minify embed template", slog.String("name", "post.html"), "err", err)
	} else {
		data = minified
	}

	return template.New("post").Funcs(template.FuncMap{
		"safe": func(r types.RenderedHTML) template.HTML {
			// RenderedHTML уже очищен политикой рендера
			return template.HTML(r.Body)
		},
	}).Parse(string(data))
}

// getPostPage godoc
// GET /p/:postId/
func (s *Services) getPostPage(c echo.Context) error {
	id, err := pathID(c, "postId")
	if err != nil {
		return c.NoContent(http.StatusNotFound)
	}
	token := tokenFromRequest(c)

	var (
		post     backend.Post
		comments []backend.Comment
		ratings  []backend.Rating
	)
	eg, ctx := errgroup.WithContext(c.Request().Context())
	eg.Go(func() (err error) {
		post, err = s.api.Post(ctx, token, id)
		return err
	})
	eg.Go(func() (err error) {
		comments, err = s.api.Comments(ctx, token, id)
		return err
	})
	eg.Go(func() (err error) {
		ratings, err = s.api.Ratings(ctx, token, id)
		return err
	})
	if err := eg.Wait(); err != nil {
		return EErrorBackend(c, err, apierrors.ErrPostPageNotFound)
	}

	var buf bytes.Buffer
	if err := s.postTemplate.Execute(&buf, postPageData{
		Post:     postToDTO(post),
		Comments: mapSlice(comments, commentToDTO),
		Ratings:  ratingsToDTO(ratings),
	}); err != nil {
		return EError(c, err)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
