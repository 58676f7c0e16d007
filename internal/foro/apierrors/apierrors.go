// Пакет содержит определения ошибок API форума. Каждая ошибка имеет код, HTTP статус
// и текст на английском и испанском, который показывается пользователю.
//
// Основные возможности:
//   - Каталог ошибок по группам: авторизация, посты и комментарии, контент, загрузка файлов, внешний API.
//   - Коды ошибок, соответствующие HTTP статусам.
//   - Форматирование сообщений с аргументами.
package apierrors

import (
	"fmt"
	"net/http"
	"strings"
)

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
	EsErr      string `json:"es_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

var (
	// 1*** - auth errors
	ErrFailedLogin              = DefinedError{Code: 1001, StatusCode: http.StatusUnauthorized, Err: "invalid credentials", EsErr: "Correo o contraseña incorrectos"}
	ErrLoginCredentialsRequired = DefinedError{Code: 1002, StatusCode: http.StatusBadRequest, Err: "both email and password are required", EsErr: "El correo y la contraseña son obligatorios"}
	ErrAccessTokenRequired      = DefinedError{Code: 1003, StatusCode: http.StatusUnauthorized, Err: "access token is required", EsErr: "Se requiere iniciar sesión"}
	ErrTokenInvalid             = DefinedError{Code: 1004, StatusCode: http.StatusUnauthorized, Err: "invalid token", EsErr: "Token inválido"}
	ErrTokenExpired             = DefinedError{Code: 1005, StatusCode: http.StatusUnauthorized, Err: "token expired", EsErr: "La sesión ha expirado"}
	ErrUserAlreadyExist         = DefinedError{Code: 1006, StatusCode: http.StatusConflict, Err: "user already exist", EsErr: "El usuario ya está registrado"}
	ErrNotEnoughRights          = DefinedError{Code: 1007, StatusCode: http.StatusForbidden, Err: "not enough rights", EsErr: "No tiene permisos para realizar esta acción"}
	ErrRegisterRequestValidate  = DefinedError{Code: 1008, StatusCode: http.StatusBadRequest, Err: "validation error", EsErr: "Datos de registro incorrectos"}
	ErrProfileRequestValidate   = DefinedError{Code: 1009, StatusCode: http.StatusBadRequest, Err: "validation error", EsErr: "Datos del perfil incorrectos"}

	// 2*** - posts and comments errors
	ErrPostNotFound            = DefinedError{Code: 2001, StatusCode: http.StatusNotFound, Err: "post not found", EsErr: "Publicación no encontrada"}
	ErrPostRequestValidate     = DefinedError{Code: 2002, StatusCode: http.StatusBadRequest, Err: "validation error", EsErr: "Datos de la publicación incorrectos"}
	ErrPostUpdateForbidden     = DefinedError{Code: 2003, StatusCode: http.StatusForbidden, Err: "only the author can edit the post", EsErr: "Solo el autor puede editar la publicación"}
	ErrCommentNotFound         = DefinedError{Code: 2004, StatusCode: http.StatusNotFound, Err: "comment not found", EsErr: "Comentario no encontrado"}
	ErrCommentRequestValidate  = DefinedError{Code: 2005, StatusCode: http.StatusBadRequest, Err: "validation error", EsErr: "Datos del comentario incorrectos"}
	ErrRatingRequestValidate   = DefinedError{Code: 2006, StatusCode: http.StatusBadRequest, Err: "rating must be between 1 and 5", EsErr: "La puntuación debe estar entre 1 y 5"}
	ErrReportRequestValidate   = DefinedError{Code: 2007, StatusCode: http.StatusBadRequest, Err: "validation error", EsErr: "Datos del reporte incorrectos"}
	ErrCategoryNotFound        = DefinedError{Code: 2008, StatusCode: http.StatusNotFound, Err: "category not found", EsErr: "Categoría no encontrada"}
	ErrNotificationNotFound    = DefinedError{Code: 2009, StatusCode: http.StatusNotFound, Err: "notification not found", EsErr: "Notificación no encontrada"}
	ErrRoleRequestValidate     = DefinedError{Code: 2010, StatusCode: http.StatusBadRequest, Err: "unknown role", EsErr: "Rol desconocido"}
	ErrCategoryRequestValidate = DefinedError{Code: 2011, StatusCode: http.StatusBadRequest, Err: "validation error", EsErr: "Datos de la categoría incorrectos"}

	// 3*** - content errors
	ErrContentMalformed    = DefinedError{Code: 3001, StatusCode: http.StatusBadRequest, Err: "content is not a valid document: %s", EsErr: "El contenido no es un documento válido: %s"}
	ErrContentEmpty        = DefinedError{Code: 3002, StatusCode: http.StatusBadRequest, Err: "content cannot be empty", EsErr: "El contenido no puede estar vacío"}
	ErrEditorCommand       = DefinedError{Code: 3003, StatusCode: http.StatusBadRequest, Err: "editor command failed: %s", EsErr: "No se pudo aplicar el comando: %s"}
	ErrEditorSurfaceLoaded = DefinedError{Code: 3004, StatusCode: http.StatusConflict, Err: "editor already populated", EsErr: "El editor ya tiene contenido"}

	// 4*** - upload errors
	ErrFileRequired     = DefinedError{Code: 4001, StatusCode: http.StatusBadRequest, Err: "file is required", EsErr: "Debe adjuntar un archivo"}
	ErrFileTooLarge     = DefinedError{Code: 4002, StatusCode: http.StatusRequestEntityTooLarge, Err: "uploaded file exceeds the %dMB size limit", EsErr: "El archivo supera el límite de %d MB"}
	ErrUploadFailed     = DefinedError{Code: 4003, StatusCode: http.StatusBadGateway, Err: "file upload failed", EsErr: "No se pudo subir el archivo"}
	ErrFileTypeRejected = DefinedError{Code: 4004, StatusCode: http.StatusUnsupportedMediaType, Err: "only images and PDF files can be uploaded", EsErr: "Solo se pueden subir imágenes y archivos PDF"}

	// 5*** - generic and external API errors
	ErrGeneric          = DefinedError{Code: 5000, StatusCode: http.StatusBadRequest, Err: "Something went wrong. Please try again later.", EsErr: "Algo salió mal. Inténtelo de nuevo más tarde"}
	ErrBackendUnavail   = DefinedError{Code: 5001, StatusCode: http.StatusBadGateway, Err: "forum API is unavailable", EsErr: "El servicio del foro no está disponible"}
	ErrBackendRejected  = DefinedError{Code: 5002, StatusCode: http.StatusBadRequest, Err: "forum API error: %s", EsErr: "Error del servicio del foro: %s"}
	ErrEntityToLarge    = DefinedError{Code: 5003, StatusCode: http.StatusRequestEntityTooLarge, Err: "size exceeds the allowed limit", EsErr: "El tamaño supera el límite permitido"}
	ErrInvalidID        = DefinedError{Code: 5004, StatusCode: http.StatusBadRequest, Err: "invalid ID", EsErr: "ID inválido"}
	ErrPostPageNotFound = DefinedError{Code: 5005, StatusCode: http.StatusNotFound, Err: "page not found", EsErr: "Página no encontrada"}
)

func (e DefinedError) WithFormattedMessage(args ...any) DefinedError {
	if len(args) > 0 {
		e.Err = fmt.Sprintf(e.Err, args...)
		e.EsErr = fmt.Sprintf(e.EsErr, args...)
	} else {
		e.Err = strings.ReplaceAll(e.Err, ": %s", "")
		e.EsErr = strings.ReplaceAll(e.EsErr, ": %s", "")
	}
	return e
}
