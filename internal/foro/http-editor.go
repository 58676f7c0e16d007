// API редактора без серверных сессий. Клиент присылает состояние редактора и одну команду
// (кнопка панели, сочетание клавиш, вставка HTML), сервер применяет ее через поверхность
// редактирования и возвращает новое состояние и предпросмотр.
//
// Основные возможности:
//   - Рендер строки контента в HTML.
//   - Нормализация строки контента.
//   - Применение команд редактирования и сочетаний клавиш.
package foro

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aisa-it/foro/internal/foro/apierrors"
	"github.com/aisa-it/foro/internal/foro/dto"
	"github.com/aisa-it/foro/internal/foro/editor"
	"github.com/aisa-it/foro/internal/foro/editor/edtypes"
	"github.com/aisa-it/foro/internal/foro/editor/surface"
	"github.com/aisa-it/foro/internal/foro/types"
)

// Команды API редактора, которые не являются командами edtypes.
const (
	editorCmdPaste     = "paste"
	editorCmdLoad      = "load"
	editorCmdSubmit    = "submit"
	editorCmdSelectAll = "select-all"
)

type ContentRequest struct {
	Content string `json:"content"`
}

type RenderResponse struct {
	HTML      types.RenderedHTML `json:"html"`
	Malformed bool               `json:"malformed"`
}

type EditorCommandRequest struct {
	State dto.EditorState `json:"state"`

	// Key - сочетание клавиш, например "Mod+B". Если задано, Command не используется.
	Key string `json:"key"`

	Command   string            `json:"command"`
	Style     string            `json:"style"`
	Text      string            `json:"text"`
	BlockType string            `json:"block_type"`
	Selection edtypes.Selection `json:"selection"`
	HTML      string            `json:"html"`
}

func (s *Services) AddEditorServices(g *echo.Group) {
	g.POST("editor/render/", s.renderContent)
	g.POST("editor/normalize/", s.normalizeContent)
	g.POST("editor/apply/", s.applyEditorCommand)
}

// renderContent godoc
// POST /api/editor/render/
func (s *Services) renderContent(c echo.Context) error {
	var req ContentRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrContentMalformed.WithFormattedMessage(err.Error()))
	}
	// черновик клиента, а не сохраненный контент: метрика не увеличивается
	r := editor.Render(req.Content)
	return c.JSON(http.StatusOK, RenderResponse{HTML: types.RenderedHTML{Body: r.HTML, Malformed: r.Malformed}, Malformed: r.Malformed})
}

// normalizeContent godoc
// POST /api/editor/normalize/
func (s *Services) normalizeContent(c echo.Context) error {
	var req ContentRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrContentMalformed.WithFormattedMessage(err.Error()))
	}
	content, err := editor.Normalize(req.Content)
	if err != nil {
		return EErrorDefined(c, apierrors.ErrContentMalformed.WithFormattedMessage(err.Error()))
	}
	return c.JSON(http.StatusOK, ContentRequest{Content: content})
}

// applyEditorCommand godoc
// POST /api/editor/apply/
func (s *Services) applyEditorCommand(c echo.Context) error {
	var req EditorCommandRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrEditorCommand.WithFormattedMessage(err.Error()))
	}

	sf, err := surfaceFromDTO(req.State)
	if err != nil {
		return EErrorDefined(c, apierrors.ErrContentMalformed.WithFormattedMessage(err.Error()))
	}

	var submitted string
	switch {
	case req.Key != "":
		err = sf.HandleKey(req.Key)
	case req.Command == editorCmdPaste:
		err = sf.Paste(req.HTML)
	case req.Command == editorCmdLoad:
		err = sf.Load(req.Text)
	case req.Command == editorCmdSubmit:
		submitted = sf.Submit()
	case req.Command == editorCmdSelectAll:
		err = sf.SelectAll()
	default:
		err = sf.Dispatch(edtypes.Command{
			Kind:      edtypes.CommandKind(req.Command),
			Style:     parseStyle(req.Style),
			Text:      req.Text,
			BlockType: edtypes.BlockType(req.BlockType),
			Selection: req.Selection,
		})
	}
	if err != nil {
		switch {
		case errors.Is(err, surface.ErrAlreadyLoaded):
			return EErrorDefined(c, apierrors.ErrEditorSurfaceLoaded)
		case errors.Is(err, surface.ErrMalformedInput):
			return EErrorDefined(c, apierrors.ErrContentMalformed.WithFormattedMessage(err.Error()))
		}
		return EErrorDefined(c, apierrors.ErrEditorCommand.WithFormattedMessage(err.Error()))
	}

	return c.JSON(http.StatusOK, dto.EditorResult{
		State:     surfaceToDTO(sf),
		HTML:      types.RenderedHTML{Body: sf.HTML()},
		Submitted: submitted,
	})
}

func parseStyle(name string) edtypes.InlineStyle {
	style, _ := edtypes.ParseInlineStyle(name)
	return style
}

// surfaceFromDTO восстанавливает поверхность из состояния клиента. Пустой контент - новая форма.
func surfaceFromDTO(state dto.EditorState) (*surface.Surface, error) {
	doc := editor.NewDocument()
	if state.Content != "" {
		var err error
		if doc, err = editor.Decode(state.Content); err != nil {
			return nil, err
		}
	}

	es := edtypes.EditorState{
		Doc:         doc,
		Selection:   state.Selection,
		HasOverride: state.HasOverride,
	}
	for _, name := range state.Override {
		es.Override |= parseStyle(name)
	}
	return surface.FromState(es), nil
}

func surfaceToDTO(sf *surface.Surface) dto.EditorState {
	es := sf.State()
	state := dto.EditorState{
		Content:     editor.Encode(es.Doc),
		Selection:   es.Selection,
		HasOverride: es.HasOverride,
	}
	if es.HasOverride {
		for _, style := range edtypes.SupportedStyles {
			if es.Override.Has(style) {
				state.Override = append(state.Override, style.Name())
			}
		}
	}
	return state
}
