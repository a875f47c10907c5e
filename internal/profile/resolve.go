package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"

	"github.com/matheus3301/smsdash/internal/config"
)

var nameRegexp = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)

// ValidateName checks that name conforms to profile naming rules.
func ValidateName(name string) error {
	if !nameRegexp.MatchString(name) {
		return fmt.Errorf("invalid profile name %q: must match ^[a-z0-9_-]{1,64}$", name)
	}
	return nil
}

// Resolve determines the active profile name using precedence:
// 1. flagOverride (--profile flag)
// 2. config.toml default_profile
// 3. "main"
func Resolve(flagOverride string) string {
	if flagOverride != "" {
		return flagOverride
	}
	cfg, err := config.Load(ConfigPath())
	if err == nil && cfg.DefaultProfile != "" {
		return cfg.DefaultProfile
	}
	return config.DefaultProfile
}

// Load reads the profile from the config file and overlays the environment.
// A missing config file is not an error; the environment alone may be enough.
func Load(name string, getenv func(string) string) (config.Profile, error) {
	cfg, err := config.Load(ConfigPath())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.Profile{}, fmt.Errorf("load config: %w", err)
	}
	p := cfg.Profile(name)
	config.ApplyEnv(&p, getenv)
	return p, nil
}
