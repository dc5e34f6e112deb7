package config

import (
	"os"
	"strings"
)

const (
	appEnvVar              = "APP_ENV"
	environmentDevelopment = "development"
	environmentProduction  = "production"
	environmentStaging     = "staging"
)

// DefaultPath is the configuration file used when -config is not given.
const DefaultPath = "config/config.yml"

var environmentAliases = map[string]string{
	"dev":  environmentDevelopment,
	"prod": environmentProduction,
	"stag": environmentStaging,
}

// envConfigPaths lists the per-environment files that replace DefaultPath.
var envConfigPaths = map[string]string{
	environmentProduction: "config/config.prod.yml",
	environmentStaging:    "config/config.staging.yml",
}

// getAppEnvironment reads the application environment from APP_ENV and
// defaults to development when no value is provided.
func getAppEnvironment() string {
	env := strings.ToLower(strings.TrimSpace(os.Getenv(appEnvVar)))
	if env == "" {
		return environmentDevelopment
	}
	if canonical, ok := environmentAliases[env]; ok {
		return canonical
	}
	return env
}

// ResolvePath picks the configuration file to load. An explicit path wins;
// otherwise an environment specific file is used when it exists, then
// DefaultPath when it exists. An empty result means built-in defaults only.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	if envPath, ok := envConfigPaths[getAppEnvironment()]; ok && fileExists(envPath) {
		return envPath
	}
	if fileExists(DefaultPath) {
		return DefaultPath
	}
	return ""
}

// AppEnvironment exposes the current application environment as configured
// through APP_ENV.
func AppEnvironment() string {
	return getAppEnvironment()
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
