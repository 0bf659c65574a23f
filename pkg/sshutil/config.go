package sshutil

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// HostAlias is a concrete Host entry from an ssh config file, usable as a
// --via vantage host.
type HostAlias struct {
	Alias    string
	Hostname string
	User     string
	Port     string
}

// Hint renders where the alias points as [user@]host[:port].
func (h HostAlias) Hint() string {
	host := h.Hostname
	if host == "" {
		host = h.Alias
	}
	if h.User != "" {
		host = h.User + "@" + host
	}
	if h.Port != "" && h.Port != "22" {
		host += ":" + h.Port
	}
	return host
}

// ParseSSHConfig lists the aliases in ~/.ssh/config.
func ParseSSHConfig() ([]HostAlias, error) {
	return ParseSSHConfigFile(filepath.Join(homeDir(), ".ssh", "config"))
}

// ParseSSHConfigFile lists the concrete aliases in path, sorted. Wildcard
// and negated patterns are skipped, as is everything after the first Match
// block. A missing file yields no aliases and no error.
func ParseSSHConfigFile(path string) ([]HostAlias, error) {
	content, _, err := preprocessSSHConfig(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var aliases []HostAlias
	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			name := pattern.String()
			if seen[name] || strings.ContainsAny(name, "*?!") {
				continue
			}
			seen[name] = true

			hostname, _ := cfg.Get(name, "HostName")
			user, _ := cfg.Get(name, "User")
			port, _ := cfg.Get(name, "Port")
			aliases = append(aliases, HostAlias{
				Alias:    name,
				Hostname: hostname,
				User:     user,
				Port:     port,
			})
		}
	}

	slices.SortFunc(aliases, func(a, b HostAlias) int {
		return strings.Compare(a.Alias, b.Alias)
	})
	return aliases, nil
}

// CompletionCandidates returns "alias<TAB>hint" pairs for aliases starting
// with prefix, in the form shell completion expects.
func CompletionCandidates(aliases []HostAlias, prefix string) []string {
	var out []string
	for _, h := range aliases {
		if strings.HasPrefix(h.Alias, prefix) {
			out = append(out, h.Alias+"\t"+h.Hint())
		}
	}
	return out
}
