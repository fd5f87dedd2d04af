// ABOUTME: Config file and credential loading for lmsctl
// ABOUTME: Reads TOML config and .env credentials, flags override both
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/rajlaud/squeezebox-go/pkg/slimrpc"
)

// config is the lmsctl configuration. Values come from the TOML config file,
// credentials additionally from LMS_USERNAME and LMS_PASSWORD in the
// environment or a .env file, and every field can be overridden by a flag.
type config struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Player   string `toml:"player"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	HTTPS    bool   `toml:"https"`
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "lmsctl", "config.toml")
}

// loadConfig reads the config file at path, or the default location when path
// is empty. A missing file is only an error when it was named explicitly.
func loadConfig(path string) (config, error) {
	cfg := config{Port: slimrpc.DefaultPort}

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if explicit || !os.IsNotExist(err) {
				return cfg, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}
	if cfg.Port == 0 {
		cfg.Port = slimrpc.DefaultPort
	}

	// Credentials may live in a .env file next to where lmsctl runs; missing
	// is fine, the environment still applies.
	_ = godotenv.Load()
	if v := os.Getenv("LMS_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("LMS_PASSWORD"); v != "" {
		cfg.Password = v
	}
	return cfg, nil
}
