// Пакет surface реализует поверхность редактирования: владельца единственного состояния
// редактора формы поста или комментария.
//
// Основные возможности:
//   - Два состояния жизненного цикла: Empty (новая форма) и Populated (загружен существующий контент).
//   - Кнопки панели, команды клавиатуры и сочетания клавиш проходят через один Dispatch.
//   - Вставка HTML из буфера обмена.
//   - Submit кодирует документ и сбрасывает поверхность в пустое состояние.
package surface

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aisa-it/foro/internal/foro/editor"
	"github.com/aisa-it/foro/internal/foro/editor/edtypes"
)

var (
	ErrAlreadyLoaded  = errors.New("surface already populated")
	ErrUnknownKey     = errors.New("unknown key command")
	ErrMalformedInput = errors.New("malformed content")
)

type Lifecycle int

const (
	Empty Lifecycle = iota
	Populated
)

func (l Lifecycle) String() string {
	if l == Populated {
		return "populated"
	}
	return "empty"
}

// Surface не потокобезопасна: ею владеет одна форма.
type Surface struct {
	state     edtypes.EditorState
	lifecycle Lifecycle
}

// New создает пустую поверхность.
func New() *Surface {
	return &Surface{state: edtypes.NewEditorState(edtypes.NewDocument())}
}

// FromState создает поверхность поверх сохраненного состояния (API редактора без сессий).
// Поверхность с непустым документом считается заполненной.
func FromState(state edtypes.EditorState) *Surface {
	s := &Surface{state: state}
	s.state.Doc = state.Doc.Normalize()
	if !s.state.Doc.IsEmpty() {
		s.lifecycle = Populated
	}
	return s
}

// Load заполняет поверхность существующим контентом. Переход Empty -> Populated
// выполняется один раз, повторная загрузка отклоняется.
func (s *Surface) Load(content string) error {
	if s.lifecycle == Populated {
		return ErrAlreadyLoaded
	}
	doc, err := editor.Decode(content)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	s.state = edtypes.NewEditorState(doc)
	s.lifecycle = Populated
	return nil
}

func (s *Surface) Lifecycle() Lifecycle {
	return s.lifecycle
}

func (s *Surface) State() edtypes.EditorState {
	return s.state
}

func (s *Surface) Document() edtypes.Document {
	return s.state.Doc
}

// HTML возвращает предпросмотр текущего документа.
func (s *Surface) HTML() string {
	return editor.RenderDocument(s.state.Doc)
}

// Dispatch применяет команду к состоянию. При ошибке состояние не меняется.
func (s *Surface) Dispatch(cmd edtypes.Command) error {
	next, err := edtypes.Apply(s.state, cmd)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *Surface) ToggleStyle(style edtypes.InlineStyle) error {
	return s.Dispatch(edtypes.Command{Kind: edtypes.CmdToggleStyle, Style: style})
}

func (s *Surface) ToggleBold() error {
	return s.ToggleStyle(edtypes.Bold)
}

func (s *Surface) ToggleItalic() error {
	return s.ToggleStyle(edtypes.Italic)
}

func (s *Surface) ToggleUnderline() error {
	return s.ToggleStyle(edtypes.Underline)
}

func (s *Surface) InsertText(text string) error {
	return s.Dispatch(edtypes.Command{Kind: edtypes.CmdInsertText, Text: text})
}

func (s *Surface) Select(sel edtypes.Selection) error {
	return s.Dispatch(edtypes.Command{Kind: edtypes.CmdSelect, Selection: sel})
}

// SelectAll выделяет весь документ.
func (s *Surface) SelectAll() error {
	return s.Select(edtypes.SelectAll(s.state.Doc))
}

func (s *Surface) SetBlockType(t edtypes.BlockType) error {
	return s.Dispatch(edtypes.Command{Kind: edtypes.CmdToggleBlockType, BlockType: t})
}

// Paste вставляет HTML из буфера обмена на место выделения.
func (s *Surface) Paste(html string) error {
	fragment, err := editor.ParseHTML(strings.NewReader(html))
	if err != nil {
		return err
	}
	return s.Dispatch(edtypes.Command{Kind: edtypes.CmdInsertFragment, Fragment: fragment})
}

// Submit возвращает закодированный документ и сбрасывает поверхность.
func (s *Surface) Submit() string {
	content := editor.Encode(s.state.Doc)
	*s = *New()
	return content
}
