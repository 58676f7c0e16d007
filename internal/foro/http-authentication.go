// Пакет для аутентификации пользователей форума. Токен выдает внешний API, сервис только
// хранит его в куке, читает из запроса и передает в API с каждым вызовом.
//
// Основные возможности:
//   - Вход по email и паролю, регистрация, выход, изменение своего профиля.
//   - Токен из заголовка Authorization (Bearer) или куки token.
//   - Чтение идентификатора и роли пользователя из claims JWT без проверки подписи (подпись проверяет API).
//   - Отклонение просроченных токенов до обращения к API.
package foro

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/aisa-it/foro/internal/foro/apierrors"
	"github.com/aisa-it/foro/internal/foro/backend"
	"github.com/aisa-it/foro/internal/foro/dto"
)

const tokenCookieName = "token"

// TokenExpiresPeriod - срок жизни куки с токеном, если в токене нет exp.
const TokenExpiresPeriod = 24 * time.Hour

var errTokenExpired = errors.New("token expired")

// SessionUser - пользователь, извлеченный из токена.
type SessionUser struct {
	ID      string
	Role    string
	Expires time.Time
}

func (u *SessionUser) IsAdmin() bool {
	return u != nil && u.Role == backend.RoleAdmin
}

func (u *SessionUser) LogValue() slog.Value {
	if u == nil {
		return slog.StringValue("anonymous")
	}
	return slog.GroupValue(slog.String("id", u.ID), slog.String("role", u.Role))
}

type AuthContext struct {
	echo.Context
	User  *SessionUser
	Token string

	// ошибка разбора токена для анонимного запроса с необязательной авторизацией
	tokenErr error
}

type AuthConfig struct {
	// Optional пропускает анонимные запросы с пустым User.
	Optional bool
	Skipper  middleware.Skipper
}

func AuthMiddleware(config AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusOK)
			}

			if config.Skipper != nil && config.Skipper(c) {
				return next(c)
			}

			token := tokenFromRequest(c)
			if token == "" {
				if config.Optional {
					return next(AuthContext{Context: c})
				}
				return EErrorDefined(c, apierrors.ErrAccessTokenRequired)
			}

			user, err := parseSessionUser(token, time.Now())
			if err != nil {
				if errors.Is(err, errTokenExpired) {
					clearAuthCookie(c)
				}
				if config.Optional {
					return next(AuthContext{Context: c, tokenErr: err})
				}
				return EErrorDefined(c, tokenError(err))
			}

			return next(AuthContext{Context: c, User: user, Token: token})
		}
	}
}

func tokenFromRequest(c echo.Context) string {
	schema, token, ok := strings.Cut(c.Request().Header.Get(echo.HeaderAuthorization), " ")
	if ok && strings.EqualFold(strings.TrimSpace(schema), "Bearer") {
		return strings.TrimSpace(token)
	}

	if cookie, err := c.Cookie(tokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// parseSessionUser читает claims токена. Подпись не проверяется: секрет есть только у API,
// а API отклонит поддельный токен при первом же вызове.
func parseSessionUser(token string, now time.Time) (*SessionUser, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}

	user := &SessionUser{}
	for _, key := range []string{"id", "user_id", "sub"} {
		if id, ok := claims[key].(string); ok && id != "" {
			user.ID = id
			break
		}
	}
	if user.ID == "" {
		return nil, errors.New("token has no user id")
	}

	for _, key := range []string{"rol", "role"} {
		if role, ok := claims[key].(string); ok {
			user.Role = role
			break
		}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, err
	}
	if exp != nil {
		user.Expires = exp.Time
		if !exp.After(now) {
			return nil, errTokenExpired
		}
	}
	return user, nil
}

func setAuthCookie(c echo.Context, token string, expires time.Time) {
	if expires.IsZero() {
		expires = time.Now().Add(TokenExpiresPeriod)
	}
	cookie := new(http.Cookie)
	cookie.Name = tokenCookieName
	cookie.Value = token
	cookie.HttpOnly = true
	cookie.Secure = true
	cookie.Path = "/"
	cookie.SameSite = http.SameSiteLaxMode
	cookie.Expires = expires
	c.SetCookie(cookie)
}

func clearAuthCookie(c echo.Context) {
	cookie := new(http.Cookie)
	cookie.Name = tokenCookieName
	cookie.Value = ""
	cookie.HttpOnly = true
	cookie.Secure = true
	cookie.Path = "/"
	cookie.SameSite = http.SameSiteLaxMode
	cookie.MaxAge = -1
	c.SetCookie(cookie)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string   `json:"token"`
	User  dto.User `json:"user"`
}

type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"fullName"`
	LastName  string `json:"last_name" validate:"fullName"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6,max=128"`
	Phone     string `json:"phone" validate:"omitempty,phone"`
	Field     string `json:"field" validate:"max=100"`
	Country   string `json:"country" validate:"max=100"`
	City      string `json:"city" validate:"max=100"`
}

// ProfileRequest - изменяемые поля профиля.
type ProfileRequest struct {
	FirstName string `json:"first_name" validate:"fullName"`
	LastName  string `json:"last_name" validate:"fullName"`
	Phone     string `json:"phone" validate:"required,phone"`
}

// RequireUser отклоняет анонимные запросы.
func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, ok := c.(AuthContext)
		if !ok || ctx.User == nil {
			if ok && ctx.tokenErr != nil {
				return EErrorDefined(c, tokenError(ctx.tokenErr))
			}
			return EErrorDefined(c, apierrors.ErrAccessTokenRequired)
		}
		return next(c)
	}
}

func tokenError(err error) apierrors.DefinedError {
	if errors.Is(err, errTokenExpired) {
		return apierrors.ErrTokenExpired
	}
	return apierrors.ErrTokenInvalid
}

// AdminMiddleware проверяет роль пользователя через API, claims токена для этого недостаточно.
func (s *Services) AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, ok := c.(AuthContext)
		if !ok || ctx.User == nil {
			return EErrorDefined(c, apierrors.ErrAccessTokenRequired)
		}
		user, err := s.api.CurrentUser(c.Request().Context(), ctx.Token)
		if err != nil {
			return EErrorBackend(c, err, apierrors.ErrTokenInvalid)
		}
		if !user.IsAdmin() {
			return EErrorDefined(c, apierrors.ErrNotEnoughRights)
		}
		ctx.User.Role = user.Rol
		return next(ctx)
	}
}

func (s *Services) AddAuthenticationServices(g *echo.Group) {
	g.POST("auth/login/", s.signIn)
	g.POST("auth/register/", s.signUp)
	g.POST("auth/logout/", s.signOut)
	g.GET("auth/me/", s.getMe, RequireUser)
	g.PATCH("auth/me/", s.updateMe, RequireUser)
}

// signIn godoc
// POST /api/auth/login/
func (s *Services) signIn(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrLoginCredentialsRequired)
	}
	if req.Email == "" || req.Password == "" {
		return EErrorDefined(c, apierrors.ErrLoginCredentialsRequired)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrFailedLogin)
	}

	ctx := c.Request().Context()
	token, err := s.api.Login(ctx, req.Email, req.Password)
	if err != nil {
		if backend.IsAPIError(err) {
			slog.Info("Failed login", "email", req.Email, "err", err)
			return EErrorDefined(c, apierrors.ErrFailedLogin)
		}
		return EErrorBackend(c, err, apierrors.ErrFailedLogin)
	}

	user, err := s.api.CurrentUser(ctx, token)
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrFailedLogin)
	}

	var expires time.Time
	if su, err := parseSessionUser(token, time.Now()); err == nil {
		expires = su.Expires
	}
	setAuthCookie(c, token, expires)

	return c.JSON(http.StatusOK, LoginResponse{Token: token, User: userToDTO(user)})
}

// signUp godoc
// POST /api/auth/register/
func (s *Services) signUp(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRegisterRequestValidate)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrRegisterRequestValidate)
	}

	user, err := s.api.Register(c.Request().Context(), backend.RegisterInput{
		Nombre:   strings.TrimSpace(req.FirstName),
		Apellido: strings.TrimSpace(req.LastName),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
		Celular:  req.Phone,
		Rubro:    req.Field,
		Pais:     req.Country,
		Ciudad:   req.City,
	})
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && strings.Contains(strings.ToLower(apiErr.Message()), "registrado") {
			return EErrorDefined(c, apierrors.ErrUserAlreadyExist)
		}
		return EErrorBackend(c, err, apierrors.ErrGeneric)
	}
	return c.JSON(http.StatusCreated, userToDTO(user))
}

// signOut godoc
// POST /api/auth/logout/
func (s *Services) signOut(c echo.Context) error {
	clearAuthCookie(c)
	return c.NoContent(http.StatusOK)
}

// getMe godoc
// GET /api/auth/me/
func (s *Services) getMe(c echo.Context) error {
	ctx := c.(AuthContext)
	user, err := s.api.CurrentUser(c.Request().Context(), ctx.Token)
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrTokenInvalid)
	}
	return c.JSON(http.StatusOK, userToDTO(user))
}

// updateMe godoc
// PATCH /api/auth/me/
func (s *Services) updateMe(c echo.Context) error {
	ctx := c.(AuthContext)
	var req ProfileRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrProfileRequestValidate)
	}
	if err := c.Validate(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrProfileRequestValidate)
	}

	user, err := s.api.UpdateUser(c.Request().Context(), ctx.Token, ctx.User.ID, backend.UserUpdateInput{
		Nombre:   strings.TrimSpace(req.FirstName),
		Apellido: strings.TrimSpace(req.LastName),
		Celular:  strings.TrimSpace(req.Phone),
	})
	if err != nil {
		return EErrorBackend(c, err, apierrors.ErrTokenInvalid)
	}
	return c.JSON(http.StatusOK, userToDTO(user))
}
