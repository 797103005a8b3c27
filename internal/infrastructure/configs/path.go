package configs

import (
	"flag"
	"os"

	"github.com/wayfare-app/wayfare/internal/infrastructure/env"
)

var configCandidates = []string{
	"./config.yaml",
	"./config.yml",
	"/etc/wayfare/config.yaml",
	"/app/config.yaml", // container image layout
}

// DetermineConfigPath resolves the config file location. Precedence:
// the --config flag, then WAYFARE_CONFIG, then the first conventional
// candidate that exists. Empty means "run on built-in defaults".
func DetermineConfigPath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath != "" {
		return configPath
	}

	if fromEnv := env.GetString("WAYFARE_CONFIG", ""); fromEnv != "" {
		return fromEnv
	}

	for _, candidate := range configCandidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
