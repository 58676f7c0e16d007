package foro

import (
	"net/http"

	json "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
)

// jsonAPI совместим с encoding/json, но не экранирует HTML: поля с отрендеренным
// контентом отдаются как есть.
var jsonAPI = json.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// JSONSerializer - сериализатор echo поверх json-iterator.
type JSONSerializer struct{}

func (JSONSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := jsonAPI.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (JSONSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := jsonAPI.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unmarshal error: "+err.Error()).SetInternal(err)
	}
	return nil
}
