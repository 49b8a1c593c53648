package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/meysamhadeli/codesnap/code_snapshot/models"
	"github.com/meysamhadeli/codesnap/load_plot"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const configName = "codesnap-config"

// Config represents the structure of the configuration file
type Config struct {
	Version     string                     `mapstructure:"version"`
	EnableCache bool                       `mapstructure:"enable_cache"`
	CacheDir    string                     `mapstructure:"cache_dir"`
	Profiles    map[string]*models.Profile `mapstructure:"profiles"`
	Plot        *PlotConfig                `mapstructure:"plot"`
}

// PlotConfig holds the chart output settings and the measurements to draw.
type PlotConfig struct {
	load_plot.Options `mapstructure:",squash"`
	OpenViewer        bool             `mapstructure:"open_viewer"`
	Series            load_plot.Series `mapstructure:"series"`
}

// DefaultConfig returns the built-in configuration: the android and server gatherers
// and the scalability chart of the attendance server load test.
func DefaultConfig() Config {
	return Config{
		Version:     "1.0.0",
		EnableCache: false,
		CacheDir:    ".cache",
		Profiles: map[string]*models.Profile{
			"android": {
				Name:       "android",
				Root:       "./android-app",
				Output:     "android_code_snapshot.txt",
				Extensions: []string{".kt", ".sq", ".gradle", ".kts", ".xml", ".properties", ".toml"},
				IgnoreDirs: []string{"build", ".gradle", ".idea", ".git"},
			},
			"server": {
				Name:       "server",
				Root:       "./server",
				Output:     "server_code_snapshot.txt",
				Extensions: []string{".ts", ".prisma", ".json", ".js", ".env"},
				IgnoreDirs: []string{"node_modules", "dist", ".git"},
			},
		},
		Plot: &PlotConfig{
			Options:    load_plot.DefaultOptions(),
			OpenViewer: true,
			Series:     load_plot.DefaultSeries(),
		},
	}
}

// cfgFile holds the path to the configuration file (set via CLI)
var cfgFile string

// LoadConfigs builds the configuration from defaults, the config file, environment variables
// and the flags of cmd, in increasing order of precedence.
func LoadConfigs(cmd *cobra.Command, cwd string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	bindEnv(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	} else {
		// Looks for codesnap-config.yml, .yaml or .json
		v.SetConfigName(configName)
		v.AddConfigPath(cwd)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	if cmd != nil {
		bindFlags(v, cmd)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	for name, profile := range config.Profiles {
		if profile == nil {
			delete(config.Profiles, name)
			continue
		}
		profile.Name = name
	}

	return &config, nil
}

// setDefaults sets all default configuration values
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("version", defaults.Version)
	v.SetDefault("enable_cache", defaults.EnableCache)
	v.SetDefault("cache_dir", defaults.CacheDir)

	for name, profile := range defaults.Profiles {
		prefix := "profiles." + name + "."
		v.SetDefault(prefix+"root", profile.Root)
		v.SetDefault(prefix+"output", profile.Output)
		v.SetDefault(prefix+"extensions", profile.Extensions)
		v.SetDefault(prefix+"ignore_dirs", profile.IgnoreDirs)
	}

	v.SetDefault("plot.output", defaults.Plot.Output)
	v.SetDefault("plot.dpi", defaults.Plot.DPI)
	v.SetDefault("plot.width_inches", defaults.Plot.WidthInches)
	v.SetDefault("plot.height_inches", defaults.Plot.HeightInches)
	v.SetDefault("plot.open_viewer", defaults.Plot.OpenViewer)
	v.SetDefault("plot.series.users", defaults.Plot.Series.Users)
	v.SetDefault("plot.series.latency_ms", defaults.Plot.Series.LatencyMs)
}

// bindEnv explicitly binds environment variables to configuration keys
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("enable_cache", "CODESNAP_ENABLE_CACHE")
	_ = v.BindEnv("cache_dir", "CODESNAP_CACHE_DIR")
	_ = v.BindEnv("plot.output", "CODESNAP_PLOT_OUTPUT")
	_ = v.BindEnv("plot.dpi", "CODESNAP_PLOT_DPI")
	_ = v.BindEnv("plot.open_viewer", "CODESNAP_PLOT_OPEN")
}

// bindFlags binds the CLI flags known to cmd to configuration values.
func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	flagKeys := map[string]string{
		"enable_cache": "enable_cache",
		"cache_dir":    "cache_dir",
		"dpi":          "plot.dpi",
		"open":         "plot.open_viewer",
	}
	for flagName, key := range flagKeys {
		if flag := cmd.Flags().Lookup(flagName); flag != nil {
			_ = v.BindPFlag(key, flag)
		}
	}
}

// InitFlags initializes the flags shared by every subcommand.
func InitFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Specifies the path to a configuration file (JSON or YAML) that contains all the settings for the application.")
	rootCmd.PersistentFlags().Bool("enable_cache", DefaultConfig().EnableCache, "Remember the files of the previous snapshot to report what changed")
	rootCmd.PersistentFlags().String("cache_dir", DefaultConfig().CacheDir, "Directory holding the snapshot manifests")

	rootCmd.Flags().BoolP("version", "v", false, "Specifies the version of the application.")
}

// Profile returns the named gatherer configuration.
func (c *Config) Profile(name string) (*models.Profile, error) {
	profile, ok := c.Profiles[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(c.ProfileNames(), ", "))
	}
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ProfileNames returns the configured profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ValidateProfile(profile *models.Profile) error {
	switch {
	case profile.Root == "":
		return fmt.Errorf("profile %q has no root directory", profile.Name)
	case profile.Output == "":
		return fmt.Errorf("profile %q has no output file", profile.Name)
	case len(profile.Extensions) == 0:
		return fmt.Errorf("profile %q has no extensions", profile.Name)
	}
	return nil
}
