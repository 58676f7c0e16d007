// Пакет edtypes описывает модель документа редактора: блоки текста с диапазонами инлайн-стилей.
//
// Основные возможности:
//   - Представление документа в виде упорядоченного списка блоков.
//   - Хранение инлайн-стилей (жирный, курсив, подчеркивание) диапазонами по рунам.
//   - Нормализация диапазонов: обрезка по границам блока, слияние пересечений.
//   - Чистые команды редактирования поверх состояния редактора (см. commands.go).
package edtypes

import (
	"slices"
	"strings"

	"github.com/gofrs/uuid"
)

type BlockType string

const (
	Unstyled          BlockType = "unstyled"
	HeaderOne         BlockType = "header-one"
	HeaderTwo         BlockType = "header-two"
	HeaderThree       BlockType = "header-three"
	HeaderFour        BlockType = "header-four"
	HeaderFive        BlockType = "header-five"
	HeaderSix         BlockType = "header-six"
	Blockquote        BlockType = "blockquote"
	CodeBlock         BlockType = "code-block"
	UnorderedListItem BlockType = "unordered-list-item"
	OrderedListItem   BlockType = "ordered-list-item"
	Atomic            BlockType = "atomic"
)

// InlineStyle - битовая маска поддерживаемых инлайн-стилей.
type InlineStyle uint8

const (
	Bold InlineStyle = 1 << iota
	Italic
	Underline
)

// SupportedStyles в порядке вложенности при рендере (внешний первым).
var SupportedStyles = []InlineStyle{Bold, Italic, Underline}

func (s InlineStyle) Has(style InlineStyle) bool {
	return s&style == style
}

// Name возвращает имя стиля в формате хранения (BOLD, ITALIC, UNDERLINE).
func (s InlineStyle) Name() string {
	switch s {
	case Bold:
		return "BOLD"
	case Italic:
		return "ITALIC"
	case Underline:
		return "UNDERLINE"
	}
	return ""
}

// ParseInlineStyle возвращает стиль по имени. Неизвестные стили не поддерживаются.
func ParseInlineStyle(name string) (InlineStyle, bool) {
	switch strings.ToUpper(name) {
	case "BOLD":
		return Bold, true
	case "ITALIC":
		return Italic, true
	case "UNDERLINE":
		return Underline, true
	}
	return 0, false
}

// KeyGenerator генерирует ключи новых блоков.
var KeyGenerator = func() string {
	return strings.ReplaceAll(uuid.Must(uuid.NewV4()).String(), "-", "")[:5]
}

type Document struct {
	Blocks []Block
}

type Block struct {
	Key    string
	Type   BlockType
	Depth  int
	Text   string
	Styles []StyleRange
}

// StyleRange - диапазон рун [Start, End) с одним стилем.
type StyleRange struct {
	Style InlineStyle
	Start int
	End   int
}

// NewDocument создает пустой документ из одного пустого блока.
func NewDocument() Document {
	return Document{Blocks: []Block{NewBlock("")}}
}

// FromText создает документ без форматирования, каждая строка текста становится блоком.
func FromText(text string) Document {
	var doc Document
	for line := range strings.SplitSeq(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		doc.Blocks = append(doc.Blocks, NewBlock(line))
	}
	return doc
}

func NewBlock(text string) Block {
	return Block{Key: KeyGenerator(), Type: Unstyled, Text: text}
}

// IsEmpty возвращает true для документа без текста.
func (d Document) IsEmpty() bool {
	for _, b := range d.Blocks {
		if b.Text != "" {
			return false
		}
	}
	return true
}

// PlainText склеивает текст блоков через перевод строки.
func (d Document) PlainText() string {
	texts := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		texts[i] = b.Text
	}
	return strings.Join(texts, "\n")
}

// Clone возвращает глубокую копию документа.
func (d Document) Clone() Document {
	blocks := make([]Block, len(d.Blocks))
	for i, b := range d.Blocks {
		blocks[i] = b.Clone()
	}
	return Document{Blocks: blocks}
}

// Normalize приводит все блоки к нормальной форме. Документ без блоков получает один пустой блок.
func (d Document) Normalize() Document {
	if len(d.Blocks) == 0 {
		return NewDocument()
	}
	res := d.Clone()
	for i := range res.Blocks {
		res.Blocks[i] = res.Blocks[i].Normalize()
	}
	return res
}

func (b Block) Clone() Block {
	b.Styles = slices.Clone(b.Styles)
	return b
}

// Len возвращает длину текста блока в рунах.
func (b Block) Len() int {
	return len([]rune(b.Text))
}

// Normalize обрезает диапазоны по длине текста, удаляет пустые и неподдерживаемые,
// сливает пересекающиеся диапазоны одного стиля и сортирует результат.
func (b Block) Normalize() Block {
	if b.Type == "" {
		b.Type = Unstyled
	}
	if b.Key == "" {
		b.Key = KeyGenerator()
	}
	b.Styles = rangesFromMask(b.styleMask())
	return b
}

// StylesAt возвращает набор стилей символа с индексом i.
func (b Block) StylesAt(i int) InlineStyle {
	var s InlineStyle
	for _, r := range b.Styles {
		if i >= r.Start && i < r.End {
			s |= r.Style
		}
	}
	return s
}

// HasStyle возвращает true, если все символы [start, end) имеют стиль.
func (b Block) HasStyle(style InlineStyle, start, end int) bool {
	mask := b.styleMask()
	start, end = clampRange(start, end, len(mask))
	if start >= end {
		return false
	}
	for _, m := range mask[start:end] {
		if !m.Has(style) {
			return false
		}
	}
	return true
}

// styleMask разворачивает диапазоны в маску стилей по каждой руне.
func (b Block) styleMask() []InlineStyle {
	mask := make([]InlineStyle, b.Len())
	for _, r := range b.Styles {
		if !isSupported(r.Style) {
			continue
		}
		start, end := clampRange(r.Start, r.End, len(mask))
		for i := start; i < end; i++ {
			mask[i] |= r.Style
		}
	}
	return mask
}

// rangesFromMask сворачивает маску обратно в отсортированные диапазоны.
func rangesFromMask(mask []InlineStyle) []StyleRange {
	var res []StyleRange
	for _, style := range SupportedStyles {
		start := -1
		for i, m := range mask {
			if m.Has(style) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				res = append(res, StyleRange{Style: style, Start: start, End: i})
				start = -1
			}
		}
		if start >= 0 {
			res = append(res, StyleRange{Style: style, Start: start, End: len(mask)})
		}
	}
	slices.SortStableFunc(res, func(a, b StyleRange) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return int(a.Style) - int(b.Style)
	})
	return res
}

func isSupported(s InlineStyle) bool {
	return slices.Contains(SupportedStyles, s)
}

func clampRange(start, end, length int) (int, int) {
	start = max(0, min(start, length))
	end = max(0, min(end, length))
	return start, end
}
