package edtypes

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrUnknownCommand   = errors.New("unknown editor command")
	ErrUnsupportedStyle = errors.New("unsupported inline style")
)

type CommandKind string

const (
	CmdToggleStyle     CommandKind = "toggle-style"
	CmdInsertText      CommandKind = "insert-text"
	CmdInsertFragment  CommandKind = "insert-fragment"
	CmdBackspace       CommandKind = "backspace"
	CmdDelete          CommandKind = "delete"
	CmdSplitBlock      CommandKind = "split-block"
	CmdToggleBlockType CommandKind = "toggle-block-type"
	CmdSelect          CommandKind = "select"
)

// Command - одна команда редактирования. Используются только поля, нужные виду команды.
type Command struct {
	Kind      CommandKind
	Style     InlineStyle
	Text      string
	BlockType BlockType
	Selection Selection
	Fragment  Document
}

// Selection задает выделение от (StartBlock, StartOffset) до (EndBlock, EndOffset).
// Смещения в рунах внутри блока.
type Selection struct {
	StartBlock  int `json:"start_block"`
	StartOffset int `json:"start_offset"`
	EndBlock    int `json:"end_block"`
	EndOffset   int `json:"end_offset"`
}

func Cursor(block, offset int) Selection {
	return Selection{StartBlock: block, StartOffset: offset, EndBlock: block, EndOffset: offset}
}

// SelectAll выделяет весь документ.
func SelectAll(d Document) Selection {
	if len(d.Blocks) == 0 {
		return Selection{}
	}
	last := len(d.Blocks) - 1
	return Selection{EndBlock: last, EndOffset: d.Blocks[last].Len()}
}

func (s Selection) Collapsed() bool {
	return s.StartBlock == s.EndBlock && s.StartOffset == s.EndOffset
}

// clamp ограничивает выделение границами документа и упорядочивает концы.
func (s Selection) clamp(d Document) Selection {
	last := len(d.Blocks) - 1
	s.StartBlock = max(0, min(s.StartBlock, last))
	s.EndBlock = max(0, min(s.EndBlock, last))
	s.StartOffset = max(0, min(s.StartOffset, d.Blocks[s.StartBlock].Len()))
	s.EndOffset = max(0, min(s.EndOffset, d.Blocks[s.EndBlock].Len()))
	if s.StartBlock > s.EndBlock || (s.StartBlock == s.EndBlock && s.StartOffset > s.EndOffset) {
		s.StartBlock, s.EndBlock = s.EndBlock, s.StartBlock
		s.StartOffset, s.EndOffset = s.EndOffset, s.StartOffset
	}
	return s
}

// EditorState - значение, которым владеет поверхность редактирования.
// Override хранит стиль, выбранный при свернутом выделении, для следующего ввода.
type EditorState struct {
	Doc         Document
	Selection   Selection
	Override    InlineStyle
	HasOverride bool
}

// NewEditorState создает состояние с курсором в начале документа.
func NewEditorState(d Document) EditorState {
	return EditorState{Doc: d.Normalize()}
}

// CurrentStyle возвращает стиль, который получит вводимый текст.
func (s EditorState) CurrentStyle() InlineStyle {
	if s.HasOverride {
		return s.Override
	}
	sel := s.Selection.clamp(s.Doc)
	if !sel.Collapsed() {
		return s.Doc.Blocks[sel.StartBlock].StylesAt(sel.StartOffset)
	}
	block := s.Doc.Blocks[sel.StartBlock]
	if sel.StartOffset > 0 {
		return block.StylesAt(sel.StartOffset - 1)
	}
	if block.Len() > 0 {
		return block.StylesAt(0)
	}
	for i := sel.StartBlock - 1; i >= 0; i-- {
		if l := s.Doc.Blocks[i].Len(); l > 0 {
			return s.Doc.Blocks[i].StylesAt(l - 1)
		}
	}
	return 0
}

// Apply применяет команду к состоянию и возвращает новое состояние. Исходное состояние не изменяется.
func Apply(state EditorState, cmd Command) (EditorState, error) {
	state.Doc = state.Doc.Normalize()
	state.Selection = state.Selection.clamp(state.Doc)

	switch cmd.Kind {
	case CmdToggleStyle:
		if !isSupported(cmd.Style) {
			return state, fmt.Errorf("%w: %d", ErrUnsupportedStyle, cmd.Style)
		}
		return toggleStyle(state, cmd.Style), nil
	case CmdInsertText:
		return insertText(state, cmd.Text), nil
	case CmdInsertFragment:
		return insertFragment(state, cmd.Fragment.Normalize()), nil
	case CmdBackspace:
		return backspace(state), nil
	case CmdDelete:
		return deleteForward(state), nil
	case CmdSplitBlock:
		return splitBlock(state), nil
	case CmdToggleBlockType:
		return toggleBlockType(state, cmd.BlockType), nil
	case CmdSelect:
		state.Selection = cmd.Selection.clamp(state.Doc)
		state.HasOverride = false
		return state, nil
	}
	return state, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)
}

func toggleStyle(state EditorState, style InlineStyle) EditorState {
	sel := state.Selection
	if sel.Collapsed() {
		state.Override = state.CurrentStyle() ^ style
		state.HasOverride = true
		return state
	}

	full := true
	chars := 0
	forEachSegment(state.Doc, sel, func(i, start, end int) {
		if start == end {
			return
		}
		chars += end - start
		if !state.Doc.Blocks[i].HasStyle(style, start, end) {
			full = false
		}
	})
	if chars == 0 {
		full = false
	}

	forEachSegment(state.Doc, sel, func(i, start, end int) {
		b := state.Doc.Blocks[i]
		runes, mask := b.content()
		for j := start; j < end; j++ {
			if full {
				mask[j] &^= style
			} else {
				mask[j] |= style
			}
		}
		state.Doc.Blocks[i] = b.withContent(runes, mask)
	})
	state.HasOverride = false
	return state
}

func insertText(state EditorState, text string) EditorState {
	style := state.CurrentStyle()
	doc, block, offset := deleteRange(state.Doc, state.Selection)

	b := doc.Blocks[block]
	runes, mask := b.content()
	ins := []rune(text)
	insMask := make([]InlineStyle, len(ins))
	for i := range insMask {
		insMask[i] = style
	}
	runes = slices.Insert(runes, offset, ins...)
	mask = slices.Insert(mask, offset, insMask...)
	doc.Blocks[block] = b.withContent(runes, mask)

	state.Doc = doc
	state.Selection = Cursor(block, offset+len(ins))
	state.HasOverride = false
	return state
}

func insertFragment(state EditorState, fragment Document) EditorState {
	doc, block, offset := deleteRange(state.Doc, state.Selection)

	target := doc.Blocks[block]
	runes, mask := target.content()
	headRunes, headMask := slices.Clone(runes[:offset]), slices.Clone(mask[:offset])
	tailRunes, tailMask := slices.Clone(runes[offset:]), slices.Clone(mask[offset:])

	if len(fragment.Blocks) == 1 {
		fr, fm := fragment.Blocks[0].content()
		doc.Blocks[block] = target.withContent(
			slices.Concat(headRunes, fr, tailRunes),
			slices.Concat(headMask, fm, tailMask),
		)
		state.Doc = doc
		state.Selection = Cursor(block, offset+len(fr))
		state.HasOverride = false
		return state
	}

	first := fragment.Blocks[0]
	fr, fm := first.content()
	inserted := []Block{target.withContent(slices.Concat(headRunes, fr), slices.Concat(headMask, fm))}
	for _, b := range fragment.Blocks[1 : len(fragment.Blocks)-1] {
		b.Key = KeyGenerator()
		inserted = append(inserted, b)
	}
	last := fragment.Blocks[len(fragment.Blocks)-1]
	lr, lm := last.content()
	last.Key = KeyGenerator()
	inserted = append(inserted, last.withContent(slices.Concat(lr, tailRunes), slices.Concat(lm, tailMask)))

	doc.Blocks = slices.Concat(doc.Blocks[:block], inserted, doc.Blocks[block+1:])
	state.Doc = doc
	state.Selection = Cursor(block+len(inserted)-1, len(lr))
	state.HasOverride = false
	return state
}

func backspace(state EditorState) EditorState {
	sel := state.Selection
	state.HasOverride = false
	if !sel.Collapsed() {
		doc, block, offset := deleteRange(state.Doc, sel)
		state.Doc, state.Selection = doc, Cursor(block, offset)
		return state
	}

	if sel.StartOffset > 0 {
		return removeRange(state, Selection{
			StartBlock: sel.StartBlock, StartOffset: sel.StartOffset - 1,
			EndBlock: sel.StartBlock, EndOffset: sel.StartOffset,
		})
	}

	if sel.StartBlock == 0 {
		// В начале документа backspace сбрасывает тип блока (списки, заголовки).
		if state.Doc.Blocks[0].Type != Unstyled {
			state.Doc = state.Doc.Clone()
			state.Doc.Blocks[0].Type = Unstyled
			state.Doc.Blocks[0].Depth = 0
		}
		return state
	}

	prev := state.Doc.Blocks[sel.StartBlock-1].Len()
	return removeRange(state, Selection{
		StartBlock: sel.StartBlock - 1, StartOffset: prev,
		EndBlock: sel.StartBlock, EndOffset: 0,
	})
}

func deleteForward(state EditorState) EditorState {
	sel := state.Selection
	state.HasOverride = false
	if !sel.Collapsed() {
		return removeRange(state, sel)
	}

	block := state.Doc.Blocks[sel.StartBlock]
	if sel.StartOffset < block.Len() {
		return removeRange(state, Selection{
			StartBlock: sel.StartBlock, StartOffset: sel.StartOffset,
			EndBlock: sel.StartBlock, EndOffset: sel.StartOffset + 1,
		})
	}
	if sel.StartBlock+1 < len(state.Doc.Blocks) {
		return removeRange(state, Selection{
			StartBlock: sel.StartBlock, StartOffset: sel.StartOffset,
			EndBlock: sel.StartBlock + 1, EndOffset: 0,
		})
	}
	return state
}

func removeRange(state EditorState, sel Selection) EditorState {
	doc, block, offset := deleteRange(state.Doc, sel)
	state.Doc, state.Selection = doc, Cursor(block, offset)
	return state
}

func splitBlock(state EditorState) EditorState {
	doc, block, offset := deleteRange(state.Doc, state.Selection)
	state.HasOverride = false

	b := doc.Blocks[block]
	// Enter в пустом элементе списка или цитате выходит из него.
	if b.Len() == 0 && (b.Type == UnorderedListItem || b.Type == OrderedListItem || b.Type == Blockquote) {
		b.Type = Unstyled
		b.Depth = 0
		doc.Blocks[block] = b
		state.Doc, state.Selection = doc, Cursor(block, 0)
		return state
	}

	runes, mask := b.content()
	head := b.withContent(slices.Clone(runes[:offset]), slices.Clone(mask[:offset]))
	tail := b.withContent(slices.Clone(runes[offset:]), slices.Clone(mask[offset:]))
	tail.Key = KeyGenerator()

	doc.Blocks = slices.Concat(doc.Blocks[:block], []Block{head, tail}, doc.Blocks[block+1:])
	state.Doc, state.Selection = doc, Cursor(block+1, 0)
	return state
}

func toggleBlockType(state EditorState, t BlockType) EditorState {
	sel := state.Selection
	all := true
	for i := sel.StartBlock; i <= sel.EndBlock; i++ {
		if state.Doc.Blocks[i].Type != t {
			all = false
			break
		}
	}
	target := t
	if all {
		target = Unstyled
	}
	state.Doc = state.Doc.Clone()
	for i := sel.StartBlock; i <= sel.EndBlock; i++ {
		state.Doc.Blocks[i].Type = target
	}
	return state
}

// deleteRange удаляет выделенный текст, сливая крайние блоки. Возвращает позицию курсора.
func deleteRange(doc Document, sel Selection) (Document, int, int) {
	doc = doc.Clone()
	if sel.Collapsed() {
		return doc, sel.StartBlock, sel.StartOffset
	}

	first := doc.Blocks[sel.StartBlock]
	last := doc.Blocks[sel.EndBlock]
	fr, fm := first.content()
	lr, lm := last.content()

	merged := first.withContent(
		slices.Concat(fr[:sel.StartOffset], lr[sel.EndOffset:]),
		slices.Concat(fm[:sel.StartOffset], lm[sel.EndOffset:]),
	)
	doc.Blocks = slices.Concat(doc.Blocks[:sel.StartBlock], []Block{merged}, doc.Blocks[sel.EndBlock+1:])
	return doc, sel.StartBlock, sel.StartOffset
}

// forEachSegment вызывает f для части каждого блока, попавшей в выделение.
func forEachSegment(doc Document, sel Selection, f func(block, start, end int)) {
	for i := sel.StartBlock; i <= sel.EndBlock; i++ {
		start, end := 0, doc.Blocks[i].Len()
		if i == sel.StartBlock {
			start = sel.StartOffset
		}
		if i == sel.EndBlock {
			end = sel.EndOffset
		}
		f(i, start, end)
	}
}

func (b Block) content() ([]rune, []InlineStyle) {
	return []rune(b.Text), b.styleMask()
}

func (b Block) withContent(runes []rune, mask []InlineStyle) Block {
	b.Text = string(runes)
	b.Styles = rangesFromMask(mask)
	return b
}
