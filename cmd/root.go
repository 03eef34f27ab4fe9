package cmd

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app       = "jobrank"
	envPrefix = "JOBRANK"
)

type Config struct {
	Search      *SearchConfig    `mapstructure:"search"`
	Profile     *ProfileConfig   `mapstructure:"profile"`
	Providers   *ProvidersConfig `mapstructure:"providers"`
	Semantic    *SemanticConfig  `mapstructure:"semantic"`
	Filters     *FiltersConfig   `mapstructure:"filters"`
	ExcludeFile string           `mapstructure:"exclude-file"`
	UserAgent   string           `mapstructure:"user-agent"`
}

type SearchConfig struct {
	Query    string        `mapstructure:"query"`
	Location string        `mapstructure:"location"`
	Limit    int           `mapstructure:"limit"`
	MinScore float64       `mapstructure:"min-score"`
	TopK     int           `mapstructure:"top-k"`
	PageSize int           `mapstructure:"page-size"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type ProfileConfig struct {
	Text            string   `mapstructure:"text"`
	File            string   `mapstructure:"file"`
	Skills          []string `mapstructure:"skills"`
	ExperienceYears int      `mapstructure:"experience-years"`
}

type ProvidersConfig struct {
	FreeEnabled bool          `mapstructure:"free-enabled"`
	Free        []string      `mapstructure:"free"`
	WebSearch   bool          `mapstructure:"web-search"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Backup      *SecretConfig `mapstructure:"backup"`
	Serper      *SecretConfig `mapstructure:"serper"`
	Findwork    *SecretConfig `mapstructure:"findwork"`
}

// SecretConfig holds a credential inline or as a path to a file with it.
type SecretConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

type SemanticConfig struct {
	Backend    string        `mapstructure:"backend"`
	Model      string        `mapstructure:"model"`
	BaseURL    string        `mapstructure:"base-url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	APIKey     string        `mapstructure:"api-key"`
	APIKeyFile string        `mapstructure:"api-key-file"`
}

type FiltersConfig struct {
	ExcludedCompanies []string `mapstructure:"excluded-companies"`
	StrictLocation    bool     `mapstructure:"strict-location"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobrank searches public job boards and ranks postings against your profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobrank.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file instead of stderr")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("search.limit", 20)
	v.SetDefault("search.top-k", 10)
	v.SetDefault("search.page-size", 10)
	v.SetDefault("search.timeout", "60s")
	v.SetDefault("providers.free-enabled", true)
	v.SetDefault("providers.timeout", "15s")
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		// An explicitly given config must be readable.
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")

	// The default config file is optional.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

// bindFlags binds the flags of the running command only, so commands sharing
// a config key do not override each other's bindings.
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			log.Fatalf("binding flag %s: %v", name, err)
		}
	}
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Search == nil {
		config.Search = &SearchConfig{}
	}
	if config.Profile == nil {
		config.Profile = &ProfileConfig{}
	}
	if config.Providers == nil {
		config.Providers = &ProvidersConfig{}
	}
	if config.Semantic == nil {
		config.Semantic = &SemanticConfig{}
	}
	if config.Filters == nil {
		config.Filters = &FiltersConfig{}
	}

	return &config, nil
}
