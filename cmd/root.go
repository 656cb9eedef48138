package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "job-scout"
)

type Config struct {
	Search *SearchConfig `mapstructure:"search"`
	User   *UserConfig   `mapstructure:"user"`
	Resume *ResumeConfig `mapstructure:"resume"`
	AI     *AIConfig     `mapstructure:"ai"`
	Export *ExportConfig `mapstructure:"export"`

	SerperAPIKeyFile string `mapstructure:"serper-api-key-file"`
}

type SearchConfig struct {
	Companies      []string      `mapstructure:"companies"`
	Roles          []string      `mapstructure:"roles"`
	Region         string        `mapstructure:"region"`
	Language       string        `mapstructure:"language"`
	DateWindowDays int           `mapstructure:"date-window-days"`
	MaxPerCompany  int           `mapstructure:"max-per-company"`
	QueryDelay     time.Duration `mapstructure:"query-delay"`
}

type UserConfig struct {
	ExperienceYears int `mapstructure:"experience-years"`
}

type ResumeConfig struct {
	File     string          `mapstructure:"file"`
	Supabase *SupabaseConfig `mapstructure:"supabase"`
}

type SupabaseConfig struct {
	URL   string `mapstructure:"url"`
	Key   string `mapstructure:"key"`
	Table string `mapstructure:"table"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type ExportConfig struct {
	Path     string `mapstructure:"path"`
	MinScore int    `mapstructure:"min-score"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-scout is a cli for finding and validating job postings that match your resume",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("serper-api-key-file", "SERPER_API_KEY_FILE"); err != nil {
		log.Fatalf("binding SERPER_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-scout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run command now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
