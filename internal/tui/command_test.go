package tui

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		want  Command
	}{
		{"save Ana Souza", Command{Name: CmdSave, Args: "Ana Souza"}},
		{"  add   Bruno  ", Command{Name: CmdSave, Args: "Bruno"}},
		{"SAVE", Command{Name: CmdSave}},
		{"o +15550001", Command{Name: CmdOpen, Args: "+15550001"}},
		{"r", Command{Name: CmdRefresh}},
		{"h", Command{Name: CmdHelp}},
		{"q", Command{Name: CmdQuit}},
		{"q!", Command{Name: CmdQuit}},
		{"frobnicate x", Command{Name: "frobnicate", Args: "x"}},
		{"", Command{}},
	}
	for _, tt := range tests {
		if got := ParseCommand(tt.input); got != tt.want {
			t.Errorf("ParseCommand(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}
