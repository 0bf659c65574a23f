package exec

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rileyhilliard/pingraph/internal/errors"
)

// commandNotFoundPatterns pull the missing command name out of shell
// errors. They only apply with exit code 127.
var commandNotFoundPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bash: (\S+): command not found`),
	regexp.MustCompile(`(?i)zsh: command not found: (\S+)`),
	regexp.MustCompile(`(?i)sh: \d+: (\S+): not found`),
	regexp.MustCompile(`(?i)-bash: (\S+): No such file or directory`),
	regexp.MustCompile(`(?i)'(\S+)' is not recognized`),
	regexp.MustCompile(`(?i)(\S+): not found`),
	regexp.MustCompile(`(?i)(\S+): command not found`),
}

// IsCommandNotFound reports whether a shell failed because a command is
// missing, and names the command when stderr says which one.
func IsCommandNotFound(stderr string, exitCode int) (string, bool) {
	if exitCode != 127 {
		return "", false
	}
	for _, pattern := range commandNotFoundPatterns {
		if matches := pattern.FindStringSubmatch(stderr); len(matches) > 1 {
			return matches[1], true
		}
	}
	return "", true
}

// NotFoundError returns a spawn error when spec ran under a shell that could
// not find it, and nil otherwise.
func NotFoundError(spec Spec, stderr string, exitCode int) error {
	name, notFound := IsCommandNotFound(stderr, exitCode)
	if !notFound {
		return nil
	}
	if name == "" {
		name = spec.Name
		if name == "" {
			if parts := strings.Fields(spec.Command); len(parts) > 0 {
				name = parts[0]
			}
		}
	}

	return errors.New(errors.ErrSpawn,
		fmt.Sprintf("'%s' not found in PATH", name),
		fmt.Sprintf("Install '%s', or check PATH for non-interactive shells: ssh <host> \"which %s\"", name, name))
}
