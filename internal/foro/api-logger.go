// Утилиты возврата ошибок API с нужным HTTP статусом и логированием.
//
// Основные возможности:
//   - Единый формат ответа с ошибкой.
//   - Логирование ошибок с контекстом запроса (метод, URL, пользователь).
//   - Преобразование ошибок внешнего API форума в ошибки каталога.
package foro

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"

	"github.com/labstack/echo/v4"

	"github.com/aisa-it/foro/internal/foro/apierrors"
	"github.com/aisa-it/foro/internal/foro/backend"
)

func requestUser(c echo.Context) *SessionUser {
	if ctx, ok := c.(AuthContext); ok {
		return ctx.User
	}
	return nil
}

// Возврат ошибки 400 с универсальным сообщением
func EError(c echo.Context, err error) error {
	var customErr apierrors.DefinedError
	if errors.As(err, &customErr) {
		return EErrorDefined(c, customErr)
	}
	if err == nil {
		slog.Error("Unknown API error",
			"method", c.Request().Method,
			"url", c.Request().URL,
			"user", requestUser(c),
			getCallerFile(),
		)
	} else {
		slog.Error("API error",
			"err", err,
			"method", c.Request().Method,
			"url", c.Request().URL,
			"user", requestUser(c),
			getCallerFile(),
		)
	}
	return EErrorDefined(c, apierrors.ErrGeneric)
}

// Возврат ошибки <status> с сообщением ошибки(403 код с пустой ошибкой не логируется)
func EErrorMsgStatus(c echo.Context, err error, status int) error {
	if status == http.StatusRequestEntityTooLarge {
		return EErrorDefined(c, apierrors.ErrEntityToLarge)
	}

	er := apierrors.ErrGeneric
	er.StatusCode = status
	if err == nil {
		if status != http.StatusForbidden {
			slog.Error("Unknown API error",
				"method", c.Request().Method,
				slog.Int("status", status),
				"url", c.Request().URL,
				"user", requestUser(c),
				getCallerFile(),
			)
		}
		return EErrorDefined(c, er)
	}

	// Ignore log 404 error
	if status != http.StatusNotFound {
		slog.Error("API error",
			"err", err,
			"method", c.Request().Method,
			slog.Int("status", status),
			"url", c.Request().URL,
			"user", requestUser(c),
			getCallerFile(),
		)
	}
	er.Err = err.Error()
	return EErrorDefined(c, er)
}

// EErrorBackend переводит ошибку внешнего API в ошибку каталога. notFound возвращается,
// если API сообщил, что сущность не найдена.
func EErrorBackend(c echo.Context, err error, notFound apierrors.DefinedError) error {
	switch {
	case backend.IsUnauthorized(err):
		return EErrorDefined(c, apierrors.ErrTokenInvalid)
	case backend.IsForbidden(err):
		return EErrorDefined(c, apierrors.ErrNotEnoughRights)
	case backend.IsNotFound(err):
		return EErrorDefined(c, notFound)
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		slog.Warn("Forum API rejected request",
			"err", err,
			"method", c.Request().Method,
			"url", c.Request().URL,
			"user", requestUser(c),
			getCallerFile(),
		)
		if apiErr.StatusCode >= http.StatusInternalServerError {
			return EErrorDefined(c, apierrors.ErrBackendUnavail)
		}
		msg := apiErr.Message()
		if msg == "" {
			msg = apiErr.Body
		}
		return EErrorDefined(c, apierrors.ErrBackendRejected.WithFormattedMessage(msg))
	}

	slog.Error("Forum API unavailable",
		"err", err,
		"method", c.Request().Method,
		"url", c.Request().URL,
		getCallerFile(),
	)
	return EErrorDefined(c, apierrors.ErrBackendUnavail)
}

// EErrorDefined возвращает JSON-ответ с кодом статуса и сообщением об ошибке. Если код статуса не определен, используется 400 Bad Request.
func EErrorDefined(c echo.Context, err apierrors.DefinedError) error {
	// If unknown code use 400 Bad Request
	if http.StatusText(err.StatusCode) == "" {
		err.StatusCode = http.StatusBadRequest
	}
	return c.JSON(err.StatusCode, err)
}

// getCallerFile возвращает имя файла и номер строки вызвавшего кода.
func getCallerFile() slog.Attr {
	_, path, no, ok := runtime.Caller(2)
	if !ok {
		return slog.Attr{}
	}
	_, file := filepath.Split(path)
	return slog.String("caller", fmt.Sprintf("%s:%d", file, no))
}
