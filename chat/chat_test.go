package chat

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		message string
		command string
		params  []string
		ok      bool
	}{
		{"bare command", "!join", "!join", nil, true},
		{"command with params", "!add-feature quiz", "!add-feature", []string{"quiz"}, true},
		{"multi word answer", "!answer  la   paz ", "!answer", []string{"la", "paz"}, true},
		{"plain chat", "hello world", "", nil, false},
		{"bang mid message", "well !quiz", "", nil, false},
		{"empty", "", "", nil, false},
		{"whitespace only", "   ", "", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			command, params, ok := ParseCommand(tt.message)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if command != tt.command {
				t.Errorf("command = %q, want %q", command, tt.command)
			}
			if len(params) != len(tt.params) {
				t.Fatalf("params = %v, want %v", params, tt.params)
			}
			for i := range params {
				if params[i] != tt.params[i] {
					t.Errorf("params[%d] = %q, want %q", i, params[i], tt.params[i])
				}
			}
		})
	}
}
