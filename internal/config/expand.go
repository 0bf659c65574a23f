package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves ${HOME} and ${USER} and a leading ~ in a configured
// path such as export_dir or log.file. Other text is left alone, including
// ~user forms.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}
	p = strings.NewReplacer("${HOME}", homeDir(), "${USER}", userName()).Replace(p)

	switch {
	case p == "~":
		return homeDir()
	case strings.HasPrefix(p, "~/"):
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "~"
}

func userName() string {
	for _, key := range []string{"USER", "LOGNAME", "USERNAME"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "user"
}
