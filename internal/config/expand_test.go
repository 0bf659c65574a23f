package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USER", "alice")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"tilde only", "~", home},
		{"tilde path", "~/graphs", filepath.Join(home, "graphs")},
		{"other user unchanged", "~bob/graphs", "~bob/graphs"},
		{"absolute unchanged", "/tmp/graphs", "/tmp/graphs"},
		{"user var", "/tmp/${USER}/graphs", "/tmp/alice/graphs"},
		{"home var", "${HOME}/logs/pingraph.log", home + "/logs/pingraph.log"},
		{"unknown var untouched", "/tmp/${SHELL}", "/tmp/${SHELL}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.input))
		})
	}
}
