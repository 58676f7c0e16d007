package draft

import (
	"bytes"
	"encoding/json"

	"github.com/aisa-it/foro/internal/foro/editor/edtypes"
)

var emptyObject = json.RawMessage("{}")

// ToRaw преобразует документ в RawDocument. Пустой документ дает один пустой блок.
func ToRaw(doc edtypes.Document) RawDocument {
	doc = doc.Normalize()
	raw := RawDocument{
		Blocks:    make([]RawBlock, 0, len(doc.Blocks)),
		EntityMap: map[string]json.RawMessage{},
	}

	for _, b := range doc.Blocks {
		offsets := utf16Offsets([]rune(b.Text))
		rb := RawBlock{
			Key:               b.Key,
			Text:              b.Text,
			Type:              string(b.Type),
			Depth:             b.Depth,
			InlineStyleRanges: make([]RawInlineStyleRange, 0, len(b.Styles)),
			EntityRanges:      []json.RawMessage{},
			Data:              emptyObject,
		}
		// Диапазоны нормализованного блока уже отсортированы по началу и стилю.
		for _, r := range b.Styles {
			rb.InlineStyleRanges = append(rb.InlineStyleRanges, RawInlineStyleRange{
				Offset: offsets[r.Start],
				Length: offsets[r.End] - offsets[r.Start],
				Style:  r.Style.Name(),
			})
		}
		raw.Blocks = append(raw.Blocks, rb)
	}

	return raw
}

// Serialize сериализует документ в JSON формата хранения.
func Serialize(doc edtypes.Document) ([]byte, error) {
	return Marshal(ToRaw(doc))
}

// Marshal сериализует RawDocument без экранирования HTML-символов.
func Marshal(raw RawDocument) ([]byte, error) {
	if raw.EntityMap == nil {
		raw.EntityMap = map[string]json.RawMessage{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(raw); err != nil {
		return nil, err
	}
	return bytes.TrimSpace(buf.Bytes()), nil
}
