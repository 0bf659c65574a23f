package util

import "strings"

// shellSpecial lists the bytes that make an argument unsafe to pass bare.
const shellSpecial = " \t\n'\"$`\\|&;<>()*?[]#~{}!"

// ShellQuote wraps s in single quotes so a POSIX shell reads it literally.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ShellJoin renders name and args as one command line, quoting only the
// arguments that need it.
func ShellJoin(name string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		if a == "" || strings.ContainsAny(a, shellSpecial) {
			a = ShellQuote(a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
