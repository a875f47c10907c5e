package tui

import "strings"

// Command names accepted at the ':' prompt.
const (
	CmdSave    = "save"
	CmdOpen    = "open"
	CmdRefresh = "refresh"
	CmdHelp    = "help"
	CmdQuit    = "quit"
)

var commandAliases = map[string]string{
	"add": CmdSave,
	"o":   CmdOpen,
	"r":   CmdRefresh,
	"h":   CmdHelp,
	"q":   CmdQuit,
	"q!":  CmdQuit,
}

// Command represents a parsed command.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses a command string (without the leading ':'). The name
// is lowercased and aliases are resolved; the rest of the line is kept as
// Args with surrounding space trimmed.
func ParseCommand(input string) Command {
	name, args, _ := strings.Cut(strings.TrimSpace(input), " ")
	name = strings.ToLower(name)
	if full, ok := commandAliases[name]; ok {
		name = full
	}
	return Command{Name: name, Args: strings.TrimSpace(args)}
}
