package editor

import (
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/aisa-it/foro/internal/foro/editor/draft"
	"github.com/aisa-it/foro/internal/foro/editor/edtypes"
	policy "github.com/aisa-it/foro/internal/foro/redactor-policy"
)

// Placeholder выводится вместо контента, который не удалось разобрать.
const Placeholder = "<p>Error al procesar el contenido</p>"

// Rendered - результат рендера строки контента.
type Rendered struct {
	HTML      string
	Malformed bool
}

// Render разбирает строку контента и возвращает очищенный HTML-фрагмент.
// Для некорректной строки возвращается Placeholder, ошибка наружу не передается.
func Render(content string) Rendered {
	res := draft.Parse(content)
	if res.IsMalformed() {
		slog.Debug("Render malformed content", "err", res.Reason)
		return Rendered{HTML: Placeholder, Malformed: true}
	}
	return Rendered{HTML: RenderDocument(draft.ToDocument(res.Raw))}
}

// RenderDocument преобразует документ в HTML. Последовательные элементы списка одного типа
// объединяются в общий ul/ol.
func RenderDocument(doc Document) string {
	var nodes []*html.Node
	var list *html.Node
	var listType BlockType

	for _, b := range doc.Normalize().Blocks {
		if b.Type == edtypes.UnorderedListItem || b.Type == edtypes.OrderedListItem {
			if list == nil || listType != b.Type {
				tag := atom.Ul
				if b.Type == edtypes.OrderedListItem {
					tag = atom.Ol
				}
				list = newElement(tag)
				listType = b.Type
				nodes = append(nodes, list)
			}
			li := newElement(atom.Li)
			appendInline(li, b)
			list.AppendChild(li)
			continue
		}

		list = nil
		el := newElement(blockTag(b.Type))
		appendInline(el, b)
		nodes = append(nodes, el)
	}

	var sb strings.Builder
	for _, n := range nodes {
		if err := html.Render(&sb, n); err != nil {
			slog.Error("Render document node", "err", err)
			return Placeholder
		}
	}
	return policy.Sanitize(sb.String())
}

func blockTag(t BlockType) atom.Atom {
	switch t {
	case edtypes.HeaderOne:
		return atom.H1
	case edtypes.HeaderTwo:
		return atom.H2
	case edtypes.HeaderThree:
		return atom.H3
	case edtypes.HeaderFour:
		return atom.H4
	case edtypes.HeaderFive:
		return atom.H5
	case edtypes.HeaderSix:
		return atom.H6
	case edtypes.Blockquote:
		return atom.Blockquote
	case edtypes.CodeBlock:
		return atom.Pre
	case edtypes.Atomic:
		return atom.Figure
	}
	return atom.P
}

func styleTag(s InlineStyle) atom.Atom {
	switch s {
	case edtypes.Bold:
		return atom.Strong
	case edtypes.Italic:
		return atom.Em
	}
	return atom.U
}

// appendInline режет текст блока на сегменты по границам диапазонов и оборачивает
// каждый сегмент в стили в фиксированном порядке вложенности. Сегмент продолжает
// элемент предыдущего сегмента, если тот открыт тем же стилем.
func appendInline(parent *html.Node, b Block) {
	runes := []rune(b.Text)
	bounds := []int{0, len(runes)}
	for _, r := range b.Styles {
		bounds = append(bounds, r.Start, r.End)
	}
	slices.Sort(bounds)
	bounds = slices.Compact(bounds)

	pre := b.Type == edtypes.CodeBlock
	for i := 0; i+1 < len(bounds); i++ {
		start, end := bounds[i], bounds[i+1]
		styles := b.StylesAt(start)

		container := parent
		for _, s := range edtypes.SupportedStyles {
			if !styles.Has(s) {
				continue
			}
			tag := styleTag(s)
			if last := container.LastChild; last != nil && last.Type == html.ElementNode && last.DataAtom == tag {
				container = last
				continue
			}
			el := newElement(tag)
			container.AppendChild(el)
			container = el
		}
		appendText(container, string(runes[start:end]), pre)
	}
}

// appendText добавляет текст, заменяя переводы строк на br (кроме pre).
func appendText(parent *html.Node, text string, pre bool) {
	if pre {
		parent.AppendChild(&html.Node{Type: html.TextNode, Data: text})
		return
	}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			parent.AppendChild(newElement(atom.Br))
		}
		if line != "" {
			parent.AppendChild(&html.Node{Type: html.TextNode, Data: line})
		}
	}
}

func newElement(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}
