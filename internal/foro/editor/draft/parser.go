package draft

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/aisa-it/foro/internal/foro/editor/edtypes"
)

var (
	ErrNotJSON        = errors.New("content is not valid JSON")
	ErrNoBlocks       = errors.New("content has no blocks array")
	ErrNegativeOffset = errors.New("inline style range has negative offset or length")
)

// Parse разбирает строку контента. Никогда не паникует: любая ошибка формата
// возвращается как Malformed.
func Parse(content string) Result {
	data := []byte(content)
	if !json.Valid(data) {
		return Malformed(ErrNotJSON)
	}

	var probe struct {
		Blocks json.RawMessage `json:"blocks"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Malformed(fmt.Errorf("decode document: %w", err))
	}
	if trimmed := bytes.TrimSpace(probe.Blocks); len(trimmed) == 0 || trimmed[0] != '[' {
		return Malformed(ErrNoBlocks)
	}

	var raw RawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return Malformed(fmt.Errorf("decode document: %w", err))
	}

	for i, b := range raw.Blocks {
		for _, r := range b.InlineStyleRanges {
			if r.Offset < 0 || r.Length < 0 {
				return Malformed(fmt.Errorf("block %d: %w", i, ErrNegativeOffset))
			}
		}
	}

	return Parsed(raw)
}

// Decode разбирает строку и строит из нее модель документа.
func Decode(content string) (edtypes.Document, error) {
	res := Parse(content)
	if res.IsMalformed() {
		return edtypes.Document{}, res.Reason
	}
	return ToDocument(res.Raw), nil
}

// ToDocument преобразует RawDocument в нормализованную модель. Неподдерживаемые стили
// отбрасываются, диапазоны за границей текста обрезаются.
func ToDocument(raw RawDocument) edtypes.Document {
	doc := edtypes.Document{Blocks: make([]edtypes.Block, 0, len(raw.Blocks))}

	for _, rb := range raw.Blocks {
		runes := []rune(rb.Text)
		offsets := utf16Offsets(runes)

		block := edtypes.Block{
			Key:   rb.Key,
			Type:  edtypes.BlockType(rb.Type),
			Depth: max(0, rb.Depth),
			Text:  rb.Text,
		}

		for _, r := range rb.InlineStyleRanges {
			style, ok := edtypes.ParseInlineStyle(r.Style)
			if !ok {
				slog.Debug("Unknown inline style", "style", r.Style)
				continue
			}
			start := runeIndex(offsets, r.Offset)
			// длина насыщается, чтобы сумма не переполнилась
			end := runeIndex(offsets, r.Offset+min(r.Length, math.MaxInt-r.Offset))
			if start >= end {
				continue
			}
			block.Styles = append(block.Styles, edtypes.StyleRange{Style: style, Start: start, End: end})
		}

		doc.Blocks = append(doc.Blocks, block)
	}

	return doc.Normalize()
}
