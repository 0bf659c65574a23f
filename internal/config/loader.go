package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/rileyhilliard/pingraph/internal/errors"
)

const (
	// ConfigFileName is the per-directory config file.
	ConfigFileName = ".pingraph.yaml"
	// GlobalConfigDir and GlobalConfigFile locate the user-wide fallback
	// under the home directory.
	GlobalConfigDir  = ".config/pingraph"
	GlobalConfigFile = "config.yaml"
)

// Load reads the config file at path over the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found: "+path,
				"Run 'pingraph init' to create one, or pass --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't read "+path,
			"Check the file is valid YAML")
	}

	return parseConfig(v, path)
}

// Find returns the config file to use, or "" when there is none. An explicit
// path must exist. Otherwise the first existing entry of searchPaths wins.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Can't open config file: "+explicit,
				"Check the path and its permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}
	home, _ := os.UserHomeDir()

	for _, p := range searchPaths(cwd, home) {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}

// searchPaths lists candidate config files in lookup order: cwd, then each
// parent up to the git root or just below home, then the global file.
func searchPaths(cwd, home string) []string {
	var paths []string
	dir := cwd
	for {
		paths = append(paths, filepath.Join(dir, ConfigFileName))
		if isGitRoot(dir) {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir || (home != "" && parent == home) {
			break
		}
		dir = parent
	}
	if home != "" {
		paths = append(paths, filepath.Join(home, GlobalConfigDir, GlobalConfigFile))
	}
	return paths
}

// LoadOrDefault finds and loads the config, or returns defaults when no file
// exists. The returned path is empty in the latter case.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return DefaultConfig(), "", nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	cfg.ExportDir = ExpandPath(cfg.ExportDir)
	cfg.Log.File = ExpandPath(cfg.Log.File)
	return cfg, nil
}

// setDefaults registers defaults so unset keys keep their zero-config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("version", CurrentConfigVersion)
	v.SetDefault("buffer", DefaultBuffer)
	v.SetDefault("restart.max", 0)
	v.SetDefault("restart.delay", DefaultRestartDelay.String())
}

func isGitRoot(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && info.IsDir()
}
