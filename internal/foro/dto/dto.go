// Содержит структуры данных (DTO), которые сервис отдает браузерному клиенту. Контент постов,
// комментариев и анонсов передается уже отрендеренным в HTML.
//
// Основные возможности:
//   - Пользователи, категории, посты и комментарии.
//   - Оценки постов со средним значением.
//   - Анонсы, уведомления и жалобы.
//   - Состояние редактора для API редактирования без сессий.
package dto

import (
	"github.com/aisa-it/foro/internal/foro/editor/edtypes"
	"github.com/aisa-it/foro/internal/foro/types"
)

type UserLight struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type User struct {
	UserLight
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Country string `json:"country,omitempty"`
	City    string `json:"city,omitempty"`
	Field   string `json:"field,omitempty"`
	IsAdmin bool   `json:"is_admin"`
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type PostLight struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	Author      *UserLight `json:"author,omitempty"`
	Category    *Category  `json:"category,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	PdfURL      string     `json:"pdf_url,omitempty"`
	RatingAvg   float64    `json:"rating_avg"`
	RatingCount int        `json:"rating_count"`
	CreatedAt   string     `json:"created_at,omitempty"`
}

// Post - пост с исходным документом (для редактирования) и отрендеренным HTML.
type Post struct {
	PostLight
	Content   string             `json:"content"`
	HTML      types.RenderedHTML `json:"html"`
	Malformed bool               `json:"malformed,omitempty"`
}

type Comment struct {
	ID        string             `json:"id"`
	HTML      types.RenderedHTML `json:"html"`
	Malformed bool               `json:"malformed,omitempty"`
	Author    *UserLight         `json:"author,omitempty"`
	CreatedAt string             `json:"created_at,omitempty"`
}

type Rating struct {
	ID    string `json:"id"`
	Value int    `json:"value"`
}

type RatingSummary struct {
	Ratings []Rating `json:"ratings"`
	Average float64  `json:"average"`
	Count   int      `json:"count"`
}

type Announcement struct {
	ID       string             `json:"id"`
	Title    string             `json:"title"`
	HTML     types.RenderedHTML `json:"html"`
	ImageURL string             `json:"image_url,omitempty"`
	StartsAt string             `json:"starts_at,omitempty"`
	EndsAt   string             `json:"ends_at,omitempty"`
}

type Notification struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at,omitempty"`
}

type Report struct {
	ID        string     `json:"id"`
	Reporter  *UserLight `json:"reporter,omitempty"`
	Post      *PostLight `json:"post,omitempty"`
	Reason    string     `json:"reason"`
	Status    string     `json:"status"`
	CreatedAt string     `json:"created_at,omitempty"`
}

// EditorState - состояние редактора, которое клиент хранит между вызовами API редактора.
// Content - закодированный документ, Override - имена стилей для следующего ввода.
type EditorState struct {
	Content     string            `json:"content"`
	Selection   edtypes.Selection `json:"selection"`
	Override    []string          `json:"override,omitempty"`
	HasOverride bool              `json:"has_override,omitempty"`
}

type EditorResult struct {
	State EditorState        `json:"state"`
	HTML  types.RenderedHTML `json:"html"`

	// Submitted заполняется командой submit: закодированный документ для сохранения.
	Submitted string `json:"submitted,omitempty"`
}
