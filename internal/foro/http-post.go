// Обработчики постов, комментариев, оценок и жалоб. Контент из запросов нормализуется
// через кодек редактора до отправки в API, контент из ответов API отдается отрендеренным.
//
// Основные возможности:
//   - Лента постов с фильтром по категории и посты текущего пользователя.
//   - Создание, частичное изменение и удаление поста (менять может автор или администратор).
//   - Комментарии: обычный текст оборачивается в документ.
//   - Оценки от 1 до 5 и средняя оценка.
//   - Жалобы на посты.
package foro

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aisa-it/foro/internal/foro/apierrors"
	"github.com/aisa-it/foro/internal/foro/backend"
	"github.com/aisa-it/foro/internal/foro/dto"
	"github.com/aisa-it/foro/internal/foro/editor"
)

type PostRequest struct {
	Title      string `json:"title" validate:"postTitle"`
	Content    string `json:"content" validate:"required"`
	CategoryID string `json:"category_id" validate:"required"`
	ImageURL   string `json:"image_url" validate:"omitempty,url"`
	PdfURL     string `json:"pdf_url" validate:"omitempty,url"`
}

type PostPatchRequest struct {
	Title    *string `json:"title" validate:"omitempty,postTitle"`
	Content  *string `json:"content"`
	ImageURL *string `json:"image_url" validate:"omitempty,url"`
	PdfURL   *string `json:"pdf_url" validate:"omitempty,url"`
}

type CommentRequest struct {
	Content string `json:"content" validate:"required,max=20000"`
}

type RatingRequest struct {
	Value int `json:"value" validate:"min=1,max=5"`
}

type ReportRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

func (s *Services) AddPostServices(g *echo.Group) {
	g.GET("posts/", s.getPostList)
	g.GET("posts/mine/", s.getMyPostList, RequireUser)
	g.GET("posts/:postId/", s.getPost)
	g.POST("posts/", s.createPost, RequireUser)
	g.PATCH("posts/:postId/", s.updatePost, RequireUser)
	g.DELETE("posts/:postId/", s.deletePost, RequireUser)
	g.POST("posts/:postId/report/", s.reportPost, RequireUser)

	g.GET("posts/:postId/comments/", s.getCommentList)
	g.POST("posts/:postId/comments/", s.createComment, RequireUser)
	g.DELETE("comments/:commentId/", s.deleteComment, RequireUser)

	g.GET("posts/:postId/ratings/", s.getRatingList)
	g.POST("posts/:postId/ratings/", s.createRating, RequireUser)
}

// prepareContent нормализует контент из запроса. Пустой документ отклоняется.
func prepareContent(content string) (string, error) {
	normalized, err := editor.PrepareContent(content)
	if err != nil {
		return "", apierrors.ErrContentMalformed.WithFormattedMessage(err.Error())
	}
	doc, err := editor.Decode(normalized)
	if err != nil {
		return "", apierrors.ErrContentMalformed.WithFormattedMessage(err.Error())
	}
	if strings.TrimSpace(doc.PlainText()) == "" {
		return "", apierrors.ErrContentEmpty
	}
	return normalized, nil
}

// getPostList godoc
// GET /api/posts/?categoria=ID
func (s *Services) getPostList(c echo.Context) error {
	ctx := c.(AuthContext)
	posts, err := s.api.Posts(c.Request().Context(), ctx.Token, c.QueryParam("categoria"))
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrCategoryNotFound)
	}
	return c.JSON(http.StatusOK, mapSlice(posts, postLightToDTO))
}

// getMyPostList godoc
// GET /api/posts/mine/
func (s *Services) getMyPostList(c echo.Context) error {
	ctx := c.(AuthContext)
	posts, err := s.api.MyPosts(c.Request().Context(), ctx.Token)
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrPostNotFound)
	}
	return c.JSON(http.StatusOK, mapSlice(posts, postLightToDTO))
}

// getPost godoc
// GET /api/posts/:postId/
func (s *Services) getPost(c echo.Context) error {
	ctx := c.(AuthContext)
	id, err := pathID(c, "postId")
	if err != nil {
		return EError(c, err)
	}
	post, err := s.api.Post(c.Request().Context(), ctx.Token, id)
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrPostNotFound)
	}
	return c.JSON(http.StatusOK, postToDTO(post))
}

// createPost godoc
// POST /api/posts/
func (s *Services) createPost(c echo.Context) error {
	ctx := c.(AuthContext)
	var req PostRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrPostRequestValidate)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrPostRequestValidate)
	}

	content, err := prepareContent(req.Content)
	if err != nil {
		return EError(c, err)
	}

	post, err := s.api.CreatePost(c.Request().Context(), ctx.Token, backend.PostInput{
		Titulo:      strings.TrimSpace(req.Title),
		Contenido:   content,
		CategoriaID: req.CategoryID,
		ImagenURL:   req.ImageURL,
		PdfURL:      req.PdfURL,
	})
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrCategoryNotFound)
	}
	return c.JSON(http.StatusCreated, postToDTO(post))
}

// updatePost godoc
// PATCH /api/posts/:postId/
func (s *Services) updatePost(c echo.Context) error {
	ctx := c.(AuthContext)
	id, err := pathID(c, "postId")
	if err != nil {
		return EError(c, err)
	}

	var req PostPatchRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrPostRequestValidate)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrPostRequestValidate)
	}

	reqCtx := c.Request().Context()
	post, err := s.api.Post(reqCtx, ctx.Token, id)
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrPostNotFound)
	}
	if (post.Autor == nil || post.Autor.ID != ctx.User.ID) && !ctx.User.IsAdmin() {
		return EErrorDefined(c, apierrors.ErrPostUpdateForbidden)
	}

	input := backend.PostUpdateInput{
		ImagenURL: req.ImageURL,
		PdfURL:    req.PdfURL,
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		input.Titulo = &title
	}
	if req.Content != nil {
		content, err := prepareContent(*req.Content)
		if err != nil {
			return EError(c, err)
		}
		input.Contenido = &content
	}

	updated, err := s.api.UpdatePost(reqCtx, ctx.Token, id, input)
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrPostNotFound)
	}

	// actualizarPost возвращает не все поля
	updated.Autor = post.Autor
	updated.Categoria = post.Categoria
	updated.PromedioPuntuacion = post.PromedioPuntuacion
	updated.NumeroPuntuaciones = post.NumeroPuntuaciones
	updated.Creado = post.Creado
	return c.JSON(http.StatusOK, postToDTO(updated))
}

// deletePost godoc
// DELETE /api/posts/:postId/
func (s *Services) deletePost(c echo.Context) error {
	ctx := c.(AuthContext)
	id, err := pathID(c, "postId")
	if err != nil {
		return EError(c, err)
	}
	if err := s.api.DeletePost(c.Request().Context(), ctx.Token, id); err != nil {
		return EErrorBackend(c, err, apierrors.ErrPostNotFound)
	}
	return c.NoContent(http.StatusOK)
}

// reportPost godoc
// POST /api/posts/:postId/report/
func (s *Services) reportPost(c echo.Context) error {
	ctx := c.(AuthContext)
	id, err := pathID(c, "postId")
	if err != nil {
		return EError(c, err)
	}

	var req ReportRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrReportRequestValidate)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrReportRequestValidate)
	}

	res, err := s.api.ReportPost(c.Request().Context(), ctx.Token, id, strings.TrimSpace(req.Reason))
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrPostNotFound)
	}
	if !res.Success {
		return EErrorDefined(c, apierrors.ErrBackendRejected.WithFormattedMessage(res.Message))
	}
	return c.JSON(http.StatusOK, res)
}

// getCommentList godoc
// GET /api/posts/:postId/comments/
func (s *Services) getCommentList(c echo.Context) error {
	ctx := c.(AuthContext)
	id, err := pathID(c, "postId")
	if err != nil {
		return EError(c, err)
	}
	comments, err := s.api.Comments(c.Request().Context(), ctx.Token, id)
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrPostNotFound)
	}
	return c.JSON(http.StatusOK, mapSlice(comments, commentToDTO))
}

// createComment godoc
// POST /api/posts/:postId/comments/
func (s *Services) createComment(c echo.Context) error {
	ctx := c.(AuthContext)
	id, err := pathID(c, "postId")
	if err != nil {
		return EError(c, err)
	}

	var req CommentRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrCommentRequestValidate)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrCommentRequestValidate)
	}

	content, err := prepareContent(req.Content)
	if err != nil {
		return EError(c, err)
	}

	comment, err := s.api.CreateComment(c.Request().Context(), ctx.Token, backend.CommentInput{
		Contenido: content,
		PostID:    id,
		AutorID:   ctx.User.ID,
	})
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrPostNotFound)
	}
	return c.JSON(http.StatusCreated, commentToDTO(comment))
}

// deleteComment godoc
// DELETE /api/comments/:commentId/
func (s *Services) deleteComment(c echo.Context) error {
	ctx := c.(AuthContext)
	id, err := pathID(c, "commentId")
	if err != nil {
		return EError(c, err)
	}
	if err := s.api.DeleteComment(c.Request().Context(), ctx.Token, id); err != nil {
		return EErrorBackend(c, err, apierrors.ErrCommentNotFound)
	}
	return c.NoContent(http.StatusOK)
}

// getRatingList godoc
// GET /api/posts/:postId/ratings/
func (s *Services) getRatingList(c echo.Context) error {
	ctx := c.(AuthContext)
	id, err := pathID(c, "postId")
	if err != nil {
		return EError(c, err)
	}
	ratings, err := s.api.Ratings(c.Request().Context(), ctx.Token, id)
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrPostNotFound)
	}
	return c.JSON(http.StatusOK, ratingsToDTO(ratings))
}

// createRating godoc
// POST /api/posts/:postId/ratings/
func (s *Services) createRating(c echo.Context) error {
	ctx := c.(AuthContext)
	id, err := pathID(c, "postId")
	if err != nil {
		return EError(c, err)
	}

	var req RatingRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRatingRequestValidate)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRatingRequestValidate)
	}

	rating, err := s.api.CreateRating(c.Request().Context(), ctx.Token, id, req.Value)
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrPostNotFound)
	}
	return c.JSON(http.StatusCreated, dto.Rating{ID: rating.ID, Value: rating.Puntuacion})
}
