// Обработчики администратора: модерация жалоб, категории и роли пользователей.
// Роль проверяется через API в AdminMiddleware.
package foro

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aisa-it/foro/internal/foro/apierrors"
	"github.com/aisa-it/foro/internal/foro/backend"
)

type ReportStatusRequest struct {
	Status string `json:"status" validate:"reportStatus"`
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=500"`
}

type UserRoleRequest struct {
	Role string `json:"role" validate:"role"`
}

func (s *Services) AddAdminServices(g *echo.Group) {
	adminGroup := g.Group("admin/", RequireUser, s.AdminMiddleware)

	adminGroup.GET("reports/", s.getReportList)
	adminGroup.POST("reports/:reportId/status/", s.updateReportStatus)
	adminGroup.POST("categories/", s.createCategory)
	adminGroup.PATCH("categories/:categoryId/", s.updateCategory)
	adminGroup.DELETE("categories/:categoryId/", s.deleteCategory)
	adminGroup.GET("users/", s.getUserList)
	adminGroup.POST("users/:userId/role/", s.updateUserRole)
}

// getReportList godoc
// GET /api/admin/reports/
func (s *Services) getReportList(c echo.Context) error {
	ctx := c.(AuthContext)
	reports, err := s.api.Reports(c.Request().Context(), ctx.Token)
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrGeneric)
	}
	return c.JSON(http.StatusOK, mapSlice(reports, reportToDTO))
}

// updateReportStatus godoc
// POST /api/admin/reports/:reportId/status/
func (s *Services) updateReportStatus(c echo.Context) error {
	ctx := c.(AuthContext)
	id, err := pathID(c, "reportId")
	if err != nil {
		return EError(c, err)
	}

	var req ReportStatusRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrReportRequestValidate)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrReportRequestValidate)
	}

	res, err := s.api.UpdateReportStatus(c.Request().Context(), ctx.Token, id, req.Status)
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrGeneric)
	}
	if !res.Success {
		return EErrorDefined(c, apierrors.ErrBackendRejected.WithFormattedMessage(res.Message))
	}
	return c.JSON(http.StatusOK, res)
}

func bindCategory(c echo.Context) (backend.CategoryInput, error) {
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return backend.CategoryInput{}, apierrors.ErrCategoryRequestValidate
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if err := c.Validate(&req); err != nil {
		return backend.CategoryInput{}, apierrors.ErrCategoryRequestValidate
	}
	return backend.CategoryInput{Nombre: req.Name, Descripcion: req.Description}, nil
}

// createCategory godoc
// POST /api/admin/categories/
func (s *Services) createCategory(c echo.Context) error {
	ctx := c.(AuthContext)
	input, err := bindCategory(c)
	if err != nil {
		return EError(c, err)
	}
	category, err := s.api.CreateCategory(c.Request().Context(), ctx.Token, input)
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrCategoryNotFound)
	}
	return c.JSON(http.StatusCreated, categoryToDTO(&category))
}

// updateCategory godoc
// PATCH /api/admin/categories/:categoryId/
func (s *Services) updateCategory(c echo.Context) error {
	ctx := c.(AuthContext)
	id, err := pathID(c, "categoryId")
	if err != nil {
		return EError(c, err)
	}
	input, err := bindCategory(c)
	if err != nil {
		return EError(c, err)
	}
	category, err := s.api.UpdateCategory(c.Request().Context(), ctx.Token, id, input)
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrCategoryNotFound)
	}
	return c.JSON(http.StatusOK, categoryToDTO(&category))
}

// deleteCategory godoc
// DELETE /api/admin/categories/:categoryId/
func (s *Services) deleteCategory(c echo.Context) error {
	ctx := c.(AuthContext)
	id, err := pathID(c, "categoryId")
	if err != nil {
		return EError(c, err)
	}
	if err := s.api.DeleteCategory(c.Request().Context(), ctx.Token, id); err != nil {
		return EErrorBackend(c, err, apierrors.ErrCategoryNotFound)
	}
	return c.NoContent(http.StatusOK)
}

// getUserList godoc
// GET /api/admin/users/
func (s *Services) getUserList(c echo.Context) error {
	ctx := c.(AuthContext)
	users, err := s.api.Users(c.Request().Context(), ctx.Token)
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrGeneric)
	}
	return c.JSON(http.StatusOK, mapSlice(users, userToDTO))
}

// updateUserRole godoc
// POST /api/admin/users/:userId/role/
func (s *Services) updateUserRole(c echo.Context) error {
	ctx := c.(AuthContext)
	id, err := pathID(c, "userId")
	if err != nil {
		return EError(c, err)
	}

	var req UserRoleRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRoleRequestValidate)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRoleRequestValidate)
	}

	user, err := s.api.UpdateUserRole(c.Request().Context(), ctx.Token, id, req.Role)
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrGeneric)
	}
	return c.JSON(http.StatusOK, userToDTO(user))
}
