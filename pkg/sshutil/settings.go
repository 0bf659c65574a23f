package sshutil

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kevinburke/ssh_config"

	"github.com/rileyhilliard/pingraph/internal/logger"
)

// matchWarningOnce limits the Match block warning to once per process.
var matchWarningOnce sync.Once

// sshSettings are the resolved connection parameters for one host.
type sshSettings struct {
	hostname      string
	port          string
	user          string
	identityFile  string
	encryptedKeys []string // keys that exist but need a passphrase
}

func (s *sshSettings) address() string {
	return net.JoinHostPort(s.hostname, s.port)
}

// resolveSSHSettings splits user@host:port and fills the rest from
// ~/.ssh/config. An explicit user wins over the config file.
func resolveSSHSettings(host string) *sshSettings {
	settings := &sshSettings{
		port: "22",
		user: currentUser(),
	}

	explicitUser := false
	if at := strings.LastIndex(host, "@"); at != -1 {
		settings.user = host[:at]
		host = host[at+1:]
		explicitUser = true
	}
	if h, port, ok := splitPort(host); ok {
		host, settings.port = h, port
	}
	settings.hostname = host

	content, matchLine, err := preprocessSSHConfig(filepath.Join(homeDir(), ".ssh", "config"))
	if err != nil {
		return settings
	}
	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		logger.Default().Warn("ignoring ~/.ssh/config: %v", err)
		return settings
	}

	found := false
	if v, _ := cfg.Get(host, "HostName"); v != "" {
		settings.hostname = v
		found = true
	}
	if v, _ := cfg.Get(host, "Port"); v != "" {
		settings.port = v
		found = true
	}
	if v, _ := cfg.Get(host, "User"); v != "" && !explicitUser {
		settings.user = v
		found = true
	}
	if v, _ := cfg.Get(host, "IdentityFile"); v != "" {
		settings.identityFile = expandPath(v)
		found = true
	}

	// The host may be defined after a Match block, which the parser can't read.
	if matchLine > 0 && !found {
		matchWarningOnce.Do(func() {
			logger.Default().Warn(
				"host %q not found in ~/.ssh/config before the Match block at line %d; entries after it are ignored",
				host, matchLine)
		})
	}
	return settings
}

// splitPort splits a trailing all-digit :port off host.
func splitPort(host string) (string, string, bool) {
	colon := strings.LastIndex(host, ":")
	if colon == -1 || colon == len(host)-1 {
		return host, "", false
	}
	port := host[colon+1:]
	for _, c := range port {
		if c < '0' || c > '9' {
			return host, "", false
		}
	}
	return host[:colon], port, true
}

// preprocessSSHConfig reads the SSH config up to the first Match directive,
// which ssh_config can't parse. The returned line is 1-based, or 0 when the
// file has no Match block.
func preprocessSSHConfig(configPath string) ([]byte, int, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, 0, err
	}

	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "match ") {
			return []byte(strings.Join(lines[:i], "\n")), i + 1, nil
		}
	}
	return content, 0, nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "root"
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}
