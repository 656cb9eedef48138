package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vedank-s/job-scout/internal/ai"
	"github.com/vedank-s/job-scout/internal/ai/gemini"
	"github.com/vedank-s/job-scout/internal/export"
	"github.com/vedank-s/job-scout/internal/jobs"
	"github.com/vedank-s/job-scout/internal/logger"
	"github.com/vedank-s/job-scout/internal/matching"
	"github.com/vedank-s/job-scout/internal/resume"
	"github.com/vedank-s/job-scout/internal/search"
	"github.com/vedank-s/job-scout/internal/secrets"
	"github.com/vedank-s/job-scout/internal/serper"
	"github.com/vedank-s/job-scout/internal/validation"
)

const (
	PromptReport          = "Show validation report"
	PromptReportByCompany = "Report by company"
	PromptExport          = "Export to xlsx"
	PromptJobsToFile      = "Dump jobs to file"
	PromptRecommendations = "Career recommendations"
	PromptExit            = "Exit"

	defaultExportPath = "job-scout-report.xlsx"
	defaultMinScore   = 40
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptReport, PromptReportByCompany, PromptExport, PromptJobsToFile, PromptRecommendations, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the job-scout main command",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-aprove", "y", false, "do not ask what to do with results, just export and exit")
	runCmd.Flags().StringP("export-path", "o", "", "path for the xlsx export. Default is job-scout-report.xlsx.")

	viper.BindPFlag("export.path", runCmd.Flags().Lookup("export-path"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	// A missing .env file is fine, keys may come from the real environment.
	_ = godotenv.Load()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the job-scout", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil || config.Search == nil {
		logger.Fatal("search configuration is required")
	}
	if config.User == nil {
		logger.Fatal("user configuration with experience-years is required")
	}

	serperKey, err := secrets.Load(secrets.Source{
		Name: "serper api key",
		File: config.SerperAPIKeyFile,
		Env:  "SERPER_API_KEY",
	})
	if err != nil {
		logger.Fatal(
			"loading serper api key",
			zap.Error(err),
			zap.String("hint", "set SERPER_API_KEY or the 'serper-api-key-file' key in the configuration file"),
		)
	}

	completer, err := newCompleter(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building gemini client", zap.Error(err))
	}

	store, err := newResumeStore(config.Resume)
	if err != nil {
		logger.Fatal("building resume store", zap.Error(err))
	}

	searcher := serper.New(serperKey, logger)
	searcher.QueryDelay = config.Search.QueryDelay

	maxLogLength := 0
	if config.AI != nil && config.AI.Gemini != nil {
		maxLogLength = config.AI.Gemini.MaxLogLength
	}

	scorer := matching.NewScorer(completer, logger, maxLogLength)
	agent := validation.NewAgent(completer, logger, maxLogLength)

	orchestrator := search.NewOrchestrator(searcher, scorer, agent, store, completer, logger, search.Config{
		Companies:      config.Search.Companies,
		Roles:          config.Search.Roles,
		Region:         config.Search.Region,
		Language:       config.Search.Language,
		DateWindowDays: config.Search.DateWindowDays,
		MaxPerCompany:  config.Search.MaxPerCompany,
		UserExperience: config.User.ExperienceYears,
	})

	logger.Info("starting the search",
		zap.Int("companies", len(config.Search.Companies)),
		zap.Int("roles", len(config.Search.Roles)),
	)

	outcome, err := orchestrator.SearchAllCompanies(ctx)
	if err != nil {
		logger.Fatal("search run failed", zap.Error(err))
	}

	if outcome.Jobs.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no validated jobs found"))
		return
	}

	if cmd.Flag("auto-aprove").Value.String() == "true" {
		fmt.Println(agent.Report(outcome.OriginalCount, outcome.ValidatedCount, outcome.FilteredReasons, config.User.ExperienceYears))
		if err := exportJobs(config, outcome.Jobs, logger); err != nil {
			logger.Fatal("exporting jobs", zap.Error(err))
		}
		return
	}

	for {
		logger.Info("current list of jobs", zap.Int("count", outcome.Jobs.Len()))

		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, orchestrator, agent, config, outcome, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, orchestrator *search.Orchestrator, agent *validation.Agent, config *Config, outcome *search.Outcome, logger *zap.Logger) error {
	switch action {
	case PromptReport:
		fmt.Println(agent.Report(outcome.OriginalCount, outcome.ValidatedCount, outcome.FilteredReasons, config.User.ExperienceYears))
		return nil
	case PromptReportByCompany:
		display := outcome.Jobs.FilterByMinScore(minScore(config))
		pretty, _ := json.MarshalIndent(display.ReportByCompany(), "", "  ")
		logger.Info(string(pretty), zap.Int("jobs count", display.Len()))
		return nil
	case PromptExport:
		return exportJobs(config, outcome.Jobs, logger)
	case PromptJobsToFile:
		filename, err := outcome.Jobs.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptRecommendations:
		fmt.Println(orchestrator.Recommendations(ctx, outcome.Jobs))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func exportJobs(config *Config, list *jobs.Jobs, logger *zap.Logger) error {
	path := defaultExportPath
	if config.Export != nil && config.Export.Path != "" {
		path = config.Export.Path
	}

	display := list.FilterByMinScore(minScore(config))
	if err := export.ToExcel(display, path, config.User.ExperienceYears); err != nil {
		return fmt.Errorf("export to excel: %w", err)
	}

	logger.Info("exported jobs",
		zap.String("path", path),
		zap.Int("count", display.Len()),
	)
	return nil
}

func minScore(config *Config) int {
	if config.Export != nil && config.Export.MinScore > 0 {
		return config.Export.MinScore
	}
	return defaultMinScore
}

func newCompleter(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Completer, error) {
	gcfg := &GeminiConfig{}
	if cfg != nil && cfg.Gemini != nil {
		gcfg = cfg.Gemini
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: gcfg.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	clientLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", gcfg.Model),
		zap.Int("ai_retry_attempts", gcfg.MaxRetries),
	)

	return gemini.New(ctx, apiKey, gcfg.Model, gcfg.MaxRetries, clientLogger)
}

func newResumeStore(cfg *ResumeConfig) (resume.Store, error) {
	if cfg != nil && cfg.Supabase != nil {
		return resume.NewSupabaseStore(cfg.Supabase.URL, cfg.Supabase.Key, cfg.Supabase.Table)
	}

	path := ""
	if cfg != nil {
		path = cfg.File
	}
	return resume.NewFileStore(path), nil
}
