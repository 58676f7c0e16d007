// Вспомогательные функции обработчиков: рендер контента с учетом метрик, преобразование
// ответов API в DTO и разбор параметров пути.
package foro

import (
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aisa-it/foro/internal/foro/apierrors"
	"github.com/aisa-it/foro/internal/foro/backend"
	"github.com/aisa-it/foro/internal/foro/dto"
	"github.com/aisa-it/foro/internal/foro/editor"
	"github.com/aisa-it/foro/internal/foro/types"
)

// ExcerptLength - длина превью поста в символах.
const ExcerptLength = 200

var idRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

var malformedContentCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "foro",
	Name:      "malformed_content_total",
	Help:      "Stored content that could not be decoded and was replaced with a placeholder",
}, []string{"source"})

// renderContent рендерит сохраненный документ. Некорректный документ заменяется заглушкой
// и учитывается в метрике.
func renderContent(source, id, content string) types.RenderedHTML {
	r := editor.Render(content)
	if r.Malformed {
		malformedContentCounter.WithLabelValues(source).Inc()
		slog.Warn("Malformed stored content", "source", source, "id", id)
	}
	return types.RenderedHTML{Body: r.HTML, Malformed: r.Malformed}
}

// renderLenient рендерит контент, который может быть обычным текстом (комментарии, анонсы).
func renderLenient(source, id, content string) types.RenderedHTML {
	if strings.HasPrefix(strings.TrimSpace(content), "{") {
		return renderContent(source, id, content)
	}
	return types.RenderedHTML{Body: editor.RenderDocument(editor.FromText(content))}
}

func pathID(c echo.Context, name string) (string, error) {
	id := c.Param(name)
	if !idRe.MatchString(id) {
		return "", apierrors.ErrInvalidID
	}
	return id, nil
}

func userLightToDTO(u *backend.User) *dto.UserLight {
	if u == nil {
		return nil
	}
	return &dto.UserLight{ID: u.ID, FirstName: u.Nombre, LastName: u.Apellido}
}

func userToDTO(u backend.User) dto.User {
	return dto.User{
		UserLight: *userLightToDTO(&u),
		Email:     u.Email,
		Role:      u.Rol,
		Phone:     u.Celular,
		Country:   u.Pais,
		City:      u.Ciudad,
		Field:     u.Rubro,
		IsAdmin:   u.IsAdmin(),
	}
}

func categoryToDTO(c *backend.Category) *dto.Category {
	if c == nil {
		return nil
	}
	return &dto.Category{ID: c.ID, Name: c.Nombre, Description: c.Descripcion}
}

func postLightToDTO(p backend.Post) dto.PostLight {
	return dto.PostLight{
		ID:          p.ID,
		Title:       p.Titulo,
		Excerpt:     editor.Excerpt(p.Contenido, ExcerptLength),
		Author:      userLightToDTO(p.Autor),
		Category:    categoryToDTO(p.Categoria),
		ImageURL:    p.ImagenURL,
		PdfURL:      p.PdfURL,
		RatingAvg:   p.PromedioPuntuacion,
		RatingCount: p.NumeroPuntuaciones,
		CreatedAt:   p.Creado,
	}
}

func postToDTO(p backend.Post) dto.Post {
	html := renderContent("post", p.ID, p.Contenido)
	return dto.Post{
		PostLight: postLightToDTO(p),
		Content:   p.Contenido,
		HTML:      html,
		Malformed: html.Malformed,
	}
}

func commentToDTO(c backend.Comment) dto.Comment {
	html := renderLenient("comment", c.ID, c.Contenido)
	return dto.Comment{
		ID:        c.ID,
		HTML:      html,
		Malformed: html.Malformed,
		Author:    userLightToDTO(c.Autor),
		CreatedAt: c.Creado,
	}
}

func ratingsToDTO(ratings []backend.Rating) dto.RatingSummary {
	summary := dto.RatingSummary{Ratings: make([]dto.Rating, 0, len(ratings))}
	var sum int
	for _, r := range ratings {
		summary.Ratings = append(summary.Ratings, dto.Rating{ID: r.ID, Value: r.Puntuacion})
		sum += r.Puntuacion
	}
	summary.Count = len(ratings)
	if summary.Count > 0 {
		summary.Average = math.Round(float64(sum)/float64(summary.Count)*100) / 100
	}
	return summary
}

func announcementToDTO(a backend.Announcement) dto.Announcement {
	return dto.Announcement{
		ID:       a.ID,
		Title:    a.Titulo,
		HTML:     renderLenient("announcement", a.ID, a.Contenido),
		ImageURL: a.ImagenURL,
		StartsAt: a.FechaInicio,
		EndsAt:   a.FechaFinal,
	}
}

func notificationToDTO(n backend.Notification) dto.Notification {
	return dto.Notification{ID: n.ID, Message: n.Mensaje, Read: n.Leido, CreatedAt: n.FechaCreacion}
}

func reportToDTO(r backend.Report) dto.Report {
	report := dto.Report{
		ID:        r.ID,
		Reporter:  userLightToDTO(r.Usuario),
		Reason:    r.Motivo,
		Status:    r.Estado,
		CreatedAt: r.FechaCreacion,
	}
	if r.Publicacion != nil {
		post := postLightToDTO(*r.Publicacion)
		report.Post = &post
	}
	return report
}

func mapSlice[T any, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
