package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/franz/sumotube/internal/probe"
	"github.com/franz/sumotube/internal/query"
	"github.com/franz/sumotube/internal/util"
	"github.com/spf13/viper"
)

// SUMO_PROBE_WINDOW maps to probe.window
var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

func setDefaults() {
	viper.SetDefault("overlay.backend", "sqlite")
	viper.SetDefault("overlay.file", "")
	viper.SetDefault("sort", string(query.SortRandom))
	viper.SetDefault("probe.enabled", true)
	viper.SetDefault("probe.window", probe.DefaultWindow)
	viper.SetDefault("probe.concurrency", probe.DefaultConcurrency)
	viper.SetDefault("watch", false)
}

// GetConfigString retrieves a string config value with proper precedence:
// 1. Command-line flag (if set)
// 2. Environment variable (SUMO_*)
// 3. Config file
// 4. Default value
func GetConfigString(key string, defaultValue string) string {
	val := viper.GetString(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// GetConfigInt retrieves an int config value with proper precedence
func GetConfigInt(key string, defaultValue int) int {
	val := viper.GetInt(key)
	if val <= 0 {
		return defaultValue
	}
	return val
}

// GetConfigDuration retrieves a duration config value
func GetConfigDuration(key string, defaultValue time.Duration) time.Duration {
	val := viper.GetDuration(key)
	if val <= 0 {
		return defaultValue
	}
	return val
}

// GetConfigStringSlice retrieves a string slice config value
func GetConfigStringSlice(key string) []string {
	return viper.GetStringSlice(key)
}

// GetConfigNASMode returns the explicit nas-mode setting, or nil to detect
func GetConfigNASMode() *bool {
	if !viper.IsSet("nas-mode") {
		return nil
	}
	v := viper.GetBool("nas-mode")
	return &v
}

// dbPath returns the state database path, defaulting to the user config dir
func dbPath() string {
	if p := viper.GetString("db"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "sumo.db"
	}
	return filepath.Join(dir, "sumo", "sumo.db")
}

// overlayFilePath returns the file used by the file overlay backend
func overlayFilePath() string {
	if p := viper.GetString("overlay.file"); p != "" {
		return p
	}
	return filepath.Join(filepath.Dir(dbPath()), "overlay.json")
}

// defaultSort parses the configured sort key
func defaultSort() (query.SortKey, error) {
	key, err := query.ParseSortKey(GetConfigString("sort", string(query.SortRandom)))
	if err != nil {
		return "", fmt.Errorf("config sort: %w", err)
	}
	return key, nil
}

// libraryTuning returns probe and watch settings for a library root
func libraryTuning(root string) *util.LibraryTuning {
	return util.AutoTuneForLibrary(root, GetConfigNASMode(), util.LibraryTuning{
		ProbeConcurrency: GetConfigInt("probe.concurrency", probe.DefaultConcurrency),
		ProbeWindow:      GetConfigDuration("probe.window", probe.DefaultWindow),
		Watch:            viper.GetBool("watch"),
	})
}
