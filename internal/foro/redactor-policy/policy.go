// Определяет политики очистки HTML, которые применяются к отрендеренному контенту постов и комментариев
// перед отдачей клиенту, где он вставляется в страницу без экранирования.
//
// Основные возможности:
//   - RenderPolicy разрешает ровно те элементы, которые выдает рендерер контента, без атрибутов.
//   - StripTagsPolicy удаляет всю разметку (превью, заголовки уведомлений).
//   - ProcessLegacyHtml приводит устаревшую HTML-разметку к набору элементов рендерера.
package policy

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/microcosm-cc/bluemonday"
)

// Блочные и инлайн элементы, которые может выдать рендерер.
var (
	BlockElements  = []string{"p", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre", "ul", "ol", "li", "figure"}
	InlineElements = []string{"strong", "em", "u", "br"}
)

var StripTagsPolicy *bluemonday.Policy = bluemonday.StrictPolicy()
var RenderPolicy *bluemonday.Policy = bluemonday.NewPolicy()

func init() {
	RenderPolicy.AllowElements(BlockElements...)
	RenderPolicy.AllowElements(InlineElements...)
}

// Sanitize очищает фрагмент по RenderPolicy.
func Sanitize(fragment string) string {
	return RenderPolicy.Sanitize(fragment)
}

// StripTags возвращает только текст фрагмента.
func StripTags(fragment string) string {
	return strings.TrimSpace(StripTagsPolicy.Sanitize(fragment))
}

var legacyTags = map[string]string{
	"b":      "strong",
	"i":      "em",
	"ins":    "u",
	"div":    "p",
	"header": "p",
}

// ProcessLegacyHtml заменяет синонимичные теги (b, i, ins, div) на теги рендерера.
// При ошибке разбора возвращает исходную строку.
func ProcessLegacyHtml(htmlContent string) string {
	if htmlContent == "" {
		return ""
	}

	nodes, err := html.ParseFragment(strings.NewReader(htmlContent), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return htmlContent
	}

	var result strings.Builder
	for _, n := range nodes {
		renameLegacy(n)
		if err := html.Render(&result, n); err != nil {
			return htmlContent
		}
	}
	return result.String()
}

func renameLegacy(n *html.Node) {
	if n.Type == html.ElementNode {
		if to, ok := legacyTags[n.Data]; ok {
			n.Data = to
			n.DataAtom = atom.Lookup([]byte(to))
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renameLegacy(c)
	}
}
