package surface

import (
	"fmt"
	"strings"

	"github.com/aisa-it/foro/internal/foro/editor/edtypes"
)

// KeyCommand - именованная команда клавиатуры.
type KeyCommand string

const (
	KeyBold       KeyCommand = "bold"
	KeyItalic     KeyCommand = "italic"
	KeyUnderline  KeyCommand = "underline"
	KeyBackspace  KeyCommand = "backspace"
	KeyDelete     KeyCommand = "delete"
	KeySplitBlock KeyCommand = "split-block"
)

var keyCommands = map[KeyCommand]edtypes.Command{
	KeyBold:       {Kind: edtypes.CmdToggleStyle, Style: edtypes.Bold},
	KeyItalic:     {Kind: edtypes.CmdToggleStyle, Style: edtypes.Italic},
	KeyUnderline:  {Kind: edtypes.CmdToggleStyle, Style: edtypes.Underline},
	KeyBackspace:  {Kind: edtypes.CmdBackspace},
	KeyDelete:     {Kind: edtypes.CmdDelete},
	KeySplitBlock: {Kind: edtypes.CmdSplitBlock},
}

var keyBindings = map[string]KeyCommand{
	"mod+b":     KeyBold,
	"mod+i":     KeyItalic,
	"mod+u":     KeyUnderline,
	"backspace": KeyBackspace,
	"delete":    KeyDelete,
	"enter":     KeySplitBlock,
}

// KeyBinding возвращает команду для сочетания клавиш. Ctrl, Cmd и Meta
// считаются модификатором Mod.
func KeyBinding(key string) (KeyCommand, bool) {
	key = strings.ToLower(strings.ReplaceAll(key, " ", ""))
	for _, mod := range []string{"ctrl+", "cmd+", "meta+"} {
		if rest, ok := strings.CutPrefix(key, mod); ok {
			key = "mod+" + rest
			break
		}
	}
	cmd, ok := keyBindings[key]
	return cmd, ok
}

// HandleKeyCommand выполняет команду клавиатуры через тот же путь, что и кнопки панели.
func (s *Surface) HandleKeyCommand(command KeyCommand) error {
	cmd, ok := keyCommands[command]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, command)
	}
	return s.Dispatch(cmd)
}

// HandleKey выполняет команду, привязанную к сочетанию клавиш.
func (s *Surface) HandleKey(key string) error {
	command, ok := KeyBinding(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return s.HandleKeyCommand(command)
}
