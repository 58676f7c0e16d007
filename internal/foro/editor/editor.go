// Пакет editor связывает модель документа, формат хранения и HTML-представление контента.
// Контент постов и комментариев хранится во внешнем API как JSON-строка документа
// Draft.js и отдается клиенту как очищенный HTML-фрагмент.
//
// Основные возможности:
//   - Encode/Decode: документ <-> строка формата хранения.
//   - Render: строка -> очищенный HTML, с заглушкой для некорректного контента.
//   - Normalize: приведение присланной клиентом строки к поддерживаемому подмножеству.
//   - ParseHTML: импорт HTML (вставка из буфера обмена) в модель документа.
package editor

import (
	"io"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/aisa-it/foro/internal/foro/editor/draft"
	"github.com/aisa-it/foro/internal/foro/editor/edtypes"
	policy "github.com/aisa-it/foro/internal/foro/redactor-policy"
)

// Encode сериализует документ в строку формата хранения.
func Encode(doc Document) string {
	b, err := draft.Serialize(doc)
	if err != nil {
		slog.Error("Serialize document", "err", err)
		return ""
	}
	return string(b)
}

// Decode разбирает строку формата хранения. Ошибка возвращается для некорректной строки.
func Decode(content string) (Document, error) {
	return draft.Decode(content)
}

// Normalize разбирает и заново сериализует строку, отбрасывая неподдерживаемые стили,
// сущности и данные блоков.
func Normalize(content string) (string, error) {
	doc, err := Decode(content)
	if err != nil {
		return "", err
	}
	return Encode(doc), nil
}

// ContentFromText превращает обычный текст в строку формата хранения.
func ContentFromText(text string) string {
	return Encode(FromText(text))
}

// PrepareContent принимает либо строку формата хранения, либо обычный текст
// (так старый клиент отправлял комментарии) и возвращает нормализованную строку.
func PrepareContent(content string) (string, error) {
	if trimmed := strings.TrimSpace(content); strings.HasPrefix(trimmed, "{") {
		return Normalize(trimmed)
	}
	return ContentFromText(content), nil
}

// Excerpt возвращает начало текста документа длиной не более limit рун.
func Excerpt(content string, limit int) string {
	doc, err := Decode(content)
	if err != nil {
		return policy.StripTags(Placeholder)
	}
	text := []rune(strings.Join(strings.Fields(doc.PlainText()), " "))
	if len(text) <= limit {
		return string(text)
	}
	return strings.TrimSpace(string(text[:limit])) + "…"
}

// ParseHTML строит документ из HTML. Разметка предварительно приводится к элементам
// рендерера и очищается, поэтому распознаются только они.
func ParseHTML(r io.Reader) (Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Document{}, err
	}

	clean := policy.Sanitize(policy.ProcessLegacyHtml(string(raw)))
	rootNode, err := html.Parse(strings.NewReader(clean))
	if err != nil {
		return Document{}, err
	}

	body := findElementByTagName(rootNode, atom.Body)
	if body == nil {
		return NewDocument(), nil
	}

	var doc Document
	// Текст и инлайн-элементы между блоками собираются в один блок unstyled.
	var inline []*html.Node
	flush := func() {
		if len(inline) == 0 {
			return
		}
		b := parseBlock(inline, edtypes.Unstyled)
		if strings.TrimSpace(b.Text) != "" {
			doc.Blocks = append(doc.Blocks, b)
		}
		inline = nil
	}

	for el := body.FirstChild; el != nil; el = el.NextSibling {
		switch el.Type {
		case html.TextNode:
			inline = append(inline, el)
			continue
		case html.ElementNode:
		default:
			continue
		}

		switch el.DataAtom {
		case atom.Strong, atom.Em, atom.U, atom.Br:
			inline = append(inline, el)
		case atom.Ul, atom.Ol:
			flush()
			t := edtypes.UnorderedListItem
			if el.DataAtom == atom.Ol {
				t = edtypes.OrderedListItem
			}
			for li := el.FirstChild; li != nil; li = li.NextSibling {
				if li.Type == html.ElementNode && li.DataAtom == atom.Li {
					doc.Blocks = append(doc.Blocks, parseBlock([]*html.Node{li}, t))
				}
			}
		default:
			flush()
			doc.Blocks = append(doc.Blocks, parseBlock([]*html.Node{el}, tagBlockType(el.DataAtom)))
		}
	}
	flush()

	return doc.Normalize(), nil
}

func tagBlockType(a atom.Atom) BlockType {
	switch a {
	case atom.H1:
		return edtypes.HeaderOne
	case atom.H2:
		return edtypes.HeaderTwo
	case atom.H3:
		return edtypes.HeaderThree
	case atom.H4:
		return edtypes.HeaderFour
	case atom.H5:
		return edtypes.HeaderFive
	case atom.H6:
		return edtypes.HeaderSix
	case atom.Blockquote:
		return edtypes.Blockquote
	case atom.Pre:
		return edtypes.CodeBlock
	case atom.Figure:
		return edtypes.Atomic
	}
	return edtypes.Unstyled
}

// parseBlock собирает текст узлов и их потомков в один блок.
func parseBlock(nodes []*html.Node, t BlockType) Block {
	var runes []rune
	var mask []InlineStyle
	pre := t == edtypes.CodeBlock

	var walk func(n *html.Node, style InlineStyle)
	walk = func(n *html.Node, style InlineStyle) {
		switch n.Type {
		case html.TextNode:
			text := n.Data
			if !pre {
				text = strings.ReplaceAll(strings.ReplaceAll(text, "\r\n", " "), "\n", " ")
			}
			for _, r := range text {
				runes = append(runes, r)
				mask = append(mask, style)
			}
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Strong:
				style |= edtypes.Bold
			case atom.Em:
				style |= edtypes.Italic
			case atom.U:
				style |= edtypes.Underline
			case atom.Br:
				runes = append(runes, '\n')
				mask = append(mask, style)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, style)
		}
	}
	for _, n := range nodes {
		walk(n, 0)
	}

	b := edtypes.NewBlock(string(runes))
	b.Type = t
	b.Styles = maskRanges(mask)
	return b
}

// maskRanges строит по одному диапазону на каждую руну со стилем; Normalize их сольет.
func maskRanges(mask []InlineStyle) []StyleRange {
	var res []StyleRange
	for i, m := range mask {
		for _, s := range edtypes.SupportedStyles {
			if m.Has(s) {
				res = append(res, StyleRange{Style: s, Start: i, End: i + 1})
			}
		}
	}
	return res
}

func findElementByTagName(rootNode *html.Node, tag atom.Atom) *html.Node {
	var el *html.Node
	iterNodes(rootNode, func(child *html.Node) bool {
		if child.Type == html.ElementNode && child.DataAtom == tag {
			el = child
			return true
		}
		return false
	})
	return el
}

func iterNodes(node *html.Node, f func(child *html.Node) bool) {
	if f(node) {
		return
	}
	for p := node.FirstChild; p != nil; p = p.NextSibling {
		iterNodes(p, f)
	}
}
