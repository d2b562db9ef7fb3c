// Package config loads tagdump settings from the environment.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/juho05/log"

	"github.com/simonhull/audiotag/internal/registry"
)

type environment map[string]string

type Config struct {
	LogLevel   log.Severity
	LogFile    *os.File
	Workers    int
	Extensions []string
	ScanHidden bool
}

// Load loads the configuration from environment variables.
// environ should be of the same format as os.Environ()
func Load(environ []string) (Config, []error) {
	env := make(environment, len(environ))
	for _, e := range environ {
		parts := strings.SplitN(e, "=", 2)
		if len(parts) != 2 {
			log.Fatalf("invalid environment variable format: %s", e)
		}
		env[parts[0]] = parts[1]
	}

	var errors []error

	var config Config
	var err error

	config.LogLevel, err = loadLogLevel(env)
	if err != nil {
		errors = append(errors, err)
	}

	config.LogFile, err = loadLogFile(env)
	if err != nil {
		errors = append(errors, err)
	}

	config.Workers, err = loadWorkers(env)
	if err != nil {
		errors = append(errors, err)
	}

	config.Extensions = loadExtensions(env)

	config.ScanHidden, err = loadScanHidden(env)
	if err != nil {
		errors = append(errors, err)
	}

	return config, errors
}

// HasExtension reports whether path ends in one of the configured extensions.
func (c Config) HasExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range c.Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func loadLogLevel(env environment) (log.Severity, error) {
	key := "LOG_LEVEL"
	def := log.INFO
	logLevelStr := env[key]
	if logLevelStr == "" {
		return def, nil
	}
	level, err := strconv.Atoi(logLevelStr)
	if err != nil {
		return def, newError(key, "invalid log level: must be an integer")
	}
	if level < int(log.NONE) || level > int(log.TRACE) {
		return def, newError(key, "invalid log level: valid values: 0 (none), 1 (fatal), 2 (error), 3 (warning), 4 (info), 5 (trace)")
	}
	return log.Severity(level), nil
}

func loadLogFile(env environment) (*os.File, error) {
	key := "LOG_FILE"
	def := os.Stderr
	if env[key] == "" {
		return def, nil
	}
	appnd, err := boolean(env, "LOG_APPEND", true)
	if err != nil {
		return def, err
	}
	if appnd {
		file, err := os.OpenFile(env[key], os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return def, newError(key, fmt.Sprintf("failed to open log file (append): %s", err))
		}
		return file, nil
	}
	file, err := os.Create(env[key])
	if err != nil {
		return def, newError(key, fmt.Sprintf("failed to open log file: %s", err))
	}
	return file, nil
}

func loadWorkers(env environment) (int, error) {
	key := "TAGDUMP_WORKERS"
	if env[key] == "" {
		return runtime.NumCPU(), nil
	}
	n, err := requiredInt(env, key)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, newError(key, "must be at least 1")
	}
	return n, nil
}

func loadExtensions(env environment) []string {
	var def []string
	for _, f := range registry.Formats() {
		def = append(def, f.Extensions()...)
	}
	list := optionalStringList(env, "TAGDUMP_EXTENSIONS", def)
	for i := range list {
		list[i] = strings.ToLower(list[i])
		if !strings.HasPrefix(list[i], ".") {
			list[i] = "." + list[i]
		}
	}
	return list
}

func loadScanHidden(env environment) (bool, error) {
	return boolean(env, "TAGDUMP_SCAN_HIDDEN", false)
}

func optionalStringList(env environment, key string, def []string) []string {
	str, ok := env[key]
	if !ok {
		return def
	}
	if str == "" {
		return make([]string, 0)
	}
	list := strings.Split(str, ",")
	newList := make([]string, 0, len(list))
	for _, item := range list {
		item = strings.TrimSpace(item)
		if item != "" {
			newList = append(newList, item)
		}
	}
	return newList
}

func requiredInt(env environment, key string) (int, error) {
	str := env[key]
	if str == "" {
		return 0, newError(key, "must not be empty")
	}
	i, err := strconv.Atoi(str)
	if err != nil {
		return 0, newError(key, "must be an integer")
	}
	return i, nil
}

func boolean(env environment, key string, def bool) (bool, error) {
	str := env[key]
	if str == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(str)
	if err != nil {
		return false, newError(key, "must be a boolean")
	}
	return b, nil
}
