package backend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	json "github.com/json-iterator/go"
)

// GraphQLError - элемент массива errors ответа API.
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Code возвращает extensions.code, если API его указал.
func (e GraphQLError) Code() string {
	code, _ := e.Extensions["code"].(string)
	return code
}

// APIError - ошибка, которую вернул API: неуспешный HTTP статус или GraphQL ошибки.
type APIError struct {
	StatusCode int
	Errors     []GraphQLError
	Body       string
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		if e.Body != "" {
			return "api error: " + http.StatusText(e.StatusCode) + ": " + e.Body
		}
		return "api error: " + http.StatusText(e.StatusCode)
	}
	return e.Message()
}

// Message склеивает сообщения GraphQL ошибок.
func (e *APIError) Message() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		msgs = append(msgs, ge.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e *APIError) hasCode(code string) bool {
	for _, ge := range e.Errors {
		if ge.Code() == code {
			return true
		}
	}
	return false
}

// ParseError разбирает неуспешный ответ API.
func ParseError(resp *resty.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode()}

	var gr graphqlResponse
	if err := json.Unmarshal(resp.Body(), &gr); err == nil && len(gr.Errors) > 0 {
		apiErr.Errors = gr.Errors
		return apiErr
	}

	apiErr.Body = strings.TrimSpace(string(resp.Body()))
	return apiErr
}

// CheckResponse возвращает ошибку транспорта или APIError для неуспешного статуса.
func CheckResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return ParseError(resp)
	}
	return nil
}

// IsUnauthorized проверяет, что API отклонил токен.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.hasCode("UNAUTHENTICATED")
}

// IsForbidden проверяет, что у пользователя нет прав на операцию.
func IsForbidden(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusForbidden || apiErr.hasCode("FORBIDDEN")
}

// IsNotFound проверяет, что объект не найден.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusNotFound || apiErr.hasCode("NOT_FOUND")
}

// IsAPIError отличает ответ API от ошибки транспорта (таймаут, отказ соединения).
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
