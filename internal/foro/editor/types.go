package editor

import (
	"github.com/aisa-it/foro/internal/foro/editor/edtypes"
)

// Реэкспорт типов из edtypes, чтобы потребителям хватало одного импорта
type (
	Document    = edtypes.Document
	Block       = edtypes.Block
	BlockType   = edtypes.BlockType
	StyleRange  = edtypes.StyleRange
	InlineStyle = edtypes.InlineStyle
	Selection   = edtypes.Selection
	EditorState = edtypes.EditorState
	Command     = edtypes.Command
)

// Реэкспорт констант
const (
	Bold      = edtypes.Bold
	Italic    = edtypes.Italic
	Underline = edtypes.Underline
)

// Реэкспорт функций
var (
	NewDocument = edtypes.NewDocument
	FromText    = edtypes.FromText
)
