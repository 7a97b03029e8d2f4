// Package config holds the runtime configuration of ncbrowse. Values come from
// command-line flags, NCBROWSE_* environment variables or an optional config
// file, merged by viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const appName = "ncbrowse"

// Config is the resolved runtime configuration.
type Config struct {
	SettingsPath  string
	BookmarksPath string
	OverlayDir    string
	ColormapDir   string
	LogFile       string
	Debug         bool
	MaxFrames     int
}

type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
}

var options = []option{
	{
		name:       "config",
		usage:      "config specifies an optional configuration file (toml, yaml or json).",
		defaultVal: "",
	},
	{
		name:       "settings",
		usage:      "settings is the JSON file holding user preferences and plot defaults.",
		defaultVal: filepath.Join(xdg.ConfigHome, appName, "settings.json"),
	},
	{
		name:       "bookmarks",
		usage:      "bookmarks is the JSON file holding bookmarked datasets. Empty uses the per-user data directory.",
		defaultVal: "",
	},
	{
		name:       "overlay-dir",
		usage:      "overlay-dir is the directory holding map overlay files (GeoJSON, CSV, TXT, KML, WKT).",
		defaultVal: filepath.Join(DataDir(), "overlays"),
	},
	{
		name:       "colormap-dir",
		usage:      "colormap-dir is the directory holding .pal colormap files.",
		defaultVal: filepath.Join(DataDir(), "colormaps"),
	},
	{
		name:       "log-file",
		usage:      "log-file is where log entries are written. Empty writes a timestamped file under the data directory.",
		defaultVal: "",
	},
	{
		name:       "debug",
		usage:      "debug enables development logging.",
		shorthand:  "d",
		defaultVal: false,
	},
	{
		name:       "max-frames",
		usage:      "max-frames caps the number of frames in animated plots.",
		defaultVal: 50,
	},
}

// DataDir is the per-user data directory, falling back to a dot directory in
// the home directory.
func DataDir() string {
	if xdg.DataHome != "" {
		return filepath.Join(xdg.DataHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appName
	}
	return filepath.Join(home, "."+appName)
}

// New returns a viper instance reading NCBROWSE_* environment variables.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("NCBROWSE")
	v.AutomaticEnv()
	for _, o := range options {
		v.SetDefault(o.name, o.defaultVal)
	}
	return v
}

// BindFlags registers every option on set and binds it into v.
func BindFlags(set *pflag.FlagSet, v *viper.Viper) error {
	for _, o := range options {
		switch d := o.defaultVal.(type) {
		case string:
			set.StringP(o.name, o.shorthand, d, o.usage)
		case bool:
			set.BoolP(o.name, o.shorthand, d, o.usage)
		case int:
			set.IntP(o.name, o.shorthand, d, o.usage)
		default:
			return fmt.Errorf("config: invalid default for %s", o.name)
		}
		if err := v.BindPFlag(o.name, set.Lookup(o.name)); err != nil {
			return fmt.Errorf("config: binding %s: %w", o.name, err)
		}
	}
	return nil
}

// Load reads the optional config file and returns the resolved Config.
func Load(v *viper.Viper) (Config, error) {
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: problem reading configuration file: %w", err)
		}
	}
	cfg := Config{
		SettingsPath:  v.GetString("settings"),
		BookmarksPath: v.GetString("bookmarks"),
		OverlayDir:    v.GetString("overlay-dir"),
		ColormapDir:   v.GetString("colormap-dir"),
		LogFile:       v.GetString("log-file"),
		Debug:         v.GetBool("debug"),
		MaxFrames:     v.GetInt("max-frames"),
	}
	if cfg.MaxFrames <= 0 {
		return Config{}, fmt.Errorf("config: max-frames must be positive, got %d", cfg.MaxFrames)
	}
	return cfg, nil
}
