// Пакет содержит общие типы значений, которые передаются между обработчиками и клиентом.
//
// Основные возможности:
//   - RenderedHTML: отрендеренный и очищенный HTML контента.
package types

import (
	"bytes"
	"encoding/json"
)

// RenderedHTML - HTML-фрагмент контента поста или комментария.
type RenderedHTML struct {
	Body      string
	Malformed bool
}

// MarshalJSON пишет Body без экранирования HTML. encoding/json.Marshal все равно
// экранирует результат, сохраняет разметку только энкодер с SetEscapeHTML(false)
// или сериализатор echo.
func (r RenderedHTML) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(r.Body); err != nil {
		return nil, err
	}

	return bytes.TrimSpace(buf.Bytes()), nil
}

func (r RenderedHTML) String() string {
	return r.Body
}
