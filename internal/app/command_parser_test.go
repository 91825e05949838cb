package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
		wantArgs []string
		wantErr  bool
	}{
		{
			name:     "simple command",
			input:    "quit",
			wantName: "quit",
		},
		{
			name:     "command with single arg",
			input:    "goto shared.seo",
			wantName: "goto",
			wantArgs: []string{"shared.seo"},
		},
		{
			name:     "command with multiple args",
			input:    "component shared Quote Block",
			wantName: "component",
			wantArgs: []string{"shared", "Quote", "Block"},
		},
		{
			name:     "command with leading/trailing spaces",
			input:    "  g   api::article.article  ",
			wantName: "g",
			wantArgs: []string{"api::article.article"},
		},
		{
			name:     "quoted argument",
			input:    `ct "Home Page"`,
			wantName: "ct",
			wantArgs: []string{"Home Page"},
		},
		{
			name:     "empty quotes are an argument",
			input:    `ct ""`,
			wantName: "ct",
			wantArgs: []string{""},
		},
		{
			name:     "uppercase command",
			input:    "WQ",
			wantName: "wq",
		},
		{
			name:  "empty input",
			input: "   ",
		},
		{
			name:    "unterminated quote",
			input:   `ct "Home`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, args, err := ParseCommand(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			if len(tt.wantArgs) == 0 {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestCheckArgs(t *testing.T) {
	def := CommandDef{Name: "goto", Usage: "goto <uid>", MinArgs: 1, MaxArgs: 1}
	assert.Error(t, def.CheckArgs(nil))
	assert.NoError(t, def.CheckArgs([]string{"shared.seo"}))
	assert.EqualError(t, def.CheckArgs([]string{"a", "b"}), "usage: goto <uid>")

	unlimited := CommandDef{Name: "ct", Usage: "ct <name>", MinArgs: 1, MaxArgs: -1}
	assert.NoError(t, unlimited.CheckArgs([]string{"a", "b", "c"}))
}

func TestCompletions(t *testing.T) {
	a := newTestApp(t, testConfig())

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty input", "  ", nil},
		{"command prefix", "go", []string{"goto"}},
		{"new command", "e", []string{"export"}},
		{"aliases too", "q", []string{"q", "q!", "quit", "quit!"}},
		{"uid argument", "goto sh", []string{"goto shared.seo"}},
		{"all uids after a space", "delete ", []string{
			"delete api::article.article", "delete api::home.home", "delete sections.hero", "delete shared.seo",
		}},
		{"category argument", "component s", []string{"component sections", "component shared"}},
		{"attribute type", "add bo", []string{"add boolean"}},
		{"export format", "export j", []string{"export json"}},
		{"only the first argument", "component shared Quo", nil},
		{"commands without arguments", "save x", nil},
		{"unknown command", "nope x", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.getCompletions(tt.input))
		})
	}
}
