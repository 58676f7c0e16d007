// Пакет draft реализует формат хранения контента: "raw"-документ редактора Draft.js.
// Строка в этом формате хранится во внешнем API в поле contenido постов и комментариев.
//
// Основные возможности:
//   - Разбор строки в RawDocument с явным результатом Parsed/Malformed вместо паники.
//   - Преобразование RawDocument в модель edtypes.Document и обратно.
//   - Пересчет смещений UTF-16 (единицы браузерного редактора) в индексы рун.
package draft

import "encoding/json"

// RawDocument - сериализуемое зеркало edtypes.Document.
type RawDocument struct {
	Blocks    []RawBlock                 `json:"blocks"`
	EntityMap map[string]json.RawMessage `json:"entityMap"`
}

type RawBlock struct {
	Key               string                `json:"key"`
	Text              string                `json:"text"`
	Type              string                `json:"type"`
	Depth             int                   `json:"depth"`
	InlineStyleRanges []RawInlineStyleRange `json:"inlineStyleRanges"`
	EntityRanges      []json.RawMessage     `json:"entityRanges"`
	Data              json.RawMessage       `json:"data,omitempty"`
}

// RawInlineStyleRange - диапазон стиля, offset и length в единицах UTF-16.
type RawInlineStyleRange struct {
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	Style  string `json:"style"`
}

type Status int

const (
	StatusParsed Status = iota
	StatusMalformed
)

// Result - результат разбора строки. Для StatusMalformed Reason содержит причину.
type Result struct {
	Status Status
	Raw    RawDocument
	Reason error
}

func Parsed(raw RawDocument) Result {
	return Result{Status: StatusParsed, Raw: raw}
}

func Malformed(reason error) Result {
	return Result{Status: StatusMalformed, Reason: reason}
}

func (r Result) IsMalformed() bool {
	return r.Status == StatusMalformed
}
