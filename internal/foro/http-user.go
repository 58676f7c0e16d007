// Обработчики справочных данных и уведомлений пользователя: категории, анонсы, уведомления.
package foro

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aisa-it/foro/internal/foro/apierrors"
	"github.com/aisa-it/foro/internal/foro/backend"
	"github.com/aisa-it/foro/internal/foro/dto"
)

func (s *Services) AddUserServices(g *echo.Group) {
	g.GET("categories/", s.getCategoryList)
	g.GET("announcements/", s.getAnnouncementList)

	g.GET("notifications/", s.getNotificationList, RequireUser)
	g.POST("notifications/:notificationId/read/", s.readNotification, RequireUser)
	g.DELETE("notifications/:notificationId/", s.deleteNotification, RequireUser)
}

// getCategoryList godoc
// GET /api/categories/
func (s *Services) getCategoryList(c echo.Context) error {
	ctx := c.(AuthContext)
	categories, err := s.api.Categories(c.Request().Context(), ctx.Token)
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrCategoryNotFound)
	}
	return c.JSON(http.StatusOK, mapSlice(categories, func(category backend.Category) *dto.Category {
		return categoryToDTO(&category)
	}))
}

// getAnnouncementList godoc
// GET /api/announcements/
func (s *Services) getAnnouncementList(c echo.Context) error {
	ctx := c.(AuthContext)
	announcements, err := s.api.Announcements(c.Request().Context(), ctx.Token)
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrGeneric)
	}
	return c.JSON(http.StatusOK, mapSlice(announcements, announcementToDTO))
}

// getNotificationList godoc
// GET /api/notifications/
func (s *Services) getNotificationList(c echo.Context) error {
	ctx := c.(AuthContext)
	notifications, err := s.api.Notifications(c.Request().Context(), ctx.Token)
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrNotificationNotFound)
	}
	return c.JSON(http.StatusOK, mapSlice(notifications, notificationToDTO))
}

// readNotification godoc
// POST /api/notifications/:notificationId/read/
func (s *Services) readNotification(c echo.Context) error {
	ctx := c.(AuthContext)
	id, err := pathID(c, "notificationId")
	if err != nil {
		return EError(c, err)
	}
	n, err := s.api.MarkNotificationRead(c.Request().Context(), ctx.Token, id)
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrNotificationNotFound)
	}
	return c.JSON(http.StatusOK, notificationToDTO(n))
}

// deleteNotification godoc
// DELETE /api/notifications/:notificationId/
func (s *Services) deleteNotification(c echo.Context) error {
	ctx := c.(AuthContext)
	id, err := pathID(c, "notificationId")
	if err != nil {
		return EError(c, err)
	}
	if err := s.api.DeleteNotification(c.Request().Context(), ctx.Token, id); err != nil {
		return EErrorBackend(c, err, apierrors.ErrNotificationNotFound)
	}
	return c.NoContent(http.StatusOK)
}
