package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellQuote(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"example.com", "'example.com'"},
		{"", "''"},
		{"it's", `'it'\''s'`},
		{"$(reboot)", "'$(reboot)'"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ShellQuote(tt.input))
		})
	}
}

func TestShellJoin(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no args", nil, "ping"},
		{"plain args", []string{"-c", "1", "example.com"}, "ping -c 1 example.com"},
		{"empty arg quoted", []string{"-I", ""}, "ping -I ''"},
		{"space quoted", []string{"-I", "my iface"}, "ping -I 'my iface'"},
		{"metachar quoted", []string{"a;b"}, "ping 'a;b'"},
		{"ipv6 literal bare", []string{"fe80::1"}, "ping fe80::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShellJoin("ping", tt.args))
		})
	}
}
