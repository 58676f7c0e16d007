// Валидация входящих запросов через go-playground/validator. Кроме стандартных правил
// регистрирует правила для имен пользователей, заголовков постов, телефонов, ролей и статусов жалоб.
//
// Основные возможности:
//   - Проверка имени и фамилии (латиница с испанскими буквами, пробел, дефис).
//   - Проверка заголовка поста по длине в символах.
//   - Проверка ролей и статусов жалоб по списку значений API.
package foro

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator"

	"github.com/aisa-it/foro/internal/foro/backend"
)

var (
	fullNameRe = regexp.MustCompile(`^[A-Za-zÁÉÍÓÚÜÑáéíóúüñ' -]+$`)
	phoneRe    = regexp.MustCompile(`^\+?[0-9 ()-]{6,20}$`)
)

type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	err := v.RegisterValidation("fullName", userFullNameValidator)
	if err != nil {
		return nil
	}

	err = v.RegisterValidation("postTitle", postTitleValidator)
	if err != nil {
		return nil
	}

	err = v.RegisterValidation("phone", phoneValidator)
	if err != nil {
		return nil
	}

	err = v.RegisterValidation("role", roleValidator)
	if err != nil {
		return nil
	}

	err = v.RegisterValidation("reportStatus", reportStatusValidator)
	if err != nil {
		return nil
	}
	return &RequestValidator{v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.validator.Struct(i); err != nil {
		_, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil
		}
		return err
	}
	return nil
}

func userFullNameValidator(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	lenStr := utf8.RuneCountInString(value)
	if !fullNameRe.MatchString(value) {
		return false
	}
	return lenStr >= 1 && lenStr <= 100
}

func postTitleValidator(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	lenStr := utf8.RuneCountInString(value)
	return lenStr >= 3 && lenStr <= 200
}

func phoneValidator(fl validator.FieldLevel) bool {
	return phoneRe.MatchString(fl.Field().String())
}

func roleValidator(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case backend.RoleUser, backend.RoleModerator, backend.RoleAdmin:
		return true
	}
	return false
}

func reportStatusValidator(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case backend.ReportPending, backend.ReportApproved, backend.ReportRejected:
		return true
	}
	return false
}
