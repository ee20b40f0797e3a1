// cmd/tools/readiness-seed/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"readiness-workers/internal/common/config"
	"readiness-workers/internal/common/database"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath  string
	seedTimeout time.Duration
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:           "readiness-seed",
	Short:         "Load reference data for the readiness workers",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var questionsCmd = &cobra.Command{
	Use:   "questions [file]",
	Short: "Upsert the assessment question bank from a YAML file",
	Long: `Reads a YAML question bank, validates every question and upserts it
into Postgres. Questions are matched on id, so re-running the command
updates text, options and ordering in place.`,
	Example: "  readiness-seed questions configs/seed-questions.yaml --migrate",
	Args:    cobra.ExactArgs(1),
	RunE:    runQuestions,
}

var indexInvestorsCmd = &cobra.Command{
	Use:   "index-investors",
	Short: "Copy active investors from Postgres into the Elasticsearch directory",
	RunE:  runIndexInvestors,
}

var (
	questionsDryRun  bool
	questionsMigrate bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (defaults to configs/config.yaml lookup)")
	rootCmd.PersistentFlags().DurationVar(&seedTimeout, "timeout", 2*time.Minute, "Overall timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every written record")

	questionsCmd.Flags().BoolVar(&questionsDryRun, "dry-run", false, "Validate the file without writing")
	questionsCmd.Flags().BoolVar(&questionsMigrate, "migrate", false, "Create tables before seeding")

	rootCmd.AddCommand(questionsCmd, indexInvestorsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func newLogger(cfg *config.Config) *zap.Logger {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	return logger.New(level, "console")
}

func openStore(ctx context.Context, cfg *config.Config) (*store.Store, func(), error) {
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.Ping(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	return store.New(pg.DB), func() { pg.Close() }, nil
}

func runQuestions(cmd *cobra.Command, args []string) error {
	questions, err := loadQuestions(args[0])
	if err != nil {
		return err
	}
	if questionsDryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d questions valid\n", args[0], len(questions))
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), seedTimeout)
	defer cancel()

	st, closeDB, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	if questionsMigrate {
		if err := st.Migrate(ctx); err != nil {
			return err
		}
		log.Info("schema migrated")
	}

	n, err := seedQuestions(ctx, st, questions, log)
	if err != nil {
		return err
	}
	log.Info("question bank seeded", zap.String("file", args[0]), zap.Int("questions", n))
	return nil
}

func runIndexInvestors(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Database.Elasticsearch.Enabled() {
		return fmt.Errorf("database.elasticsearch.addresses is empty")
	}
	log := newLogger(cfg)
	defer log.Sync()

	ctx, cancel := context.WithTimeout(cmd.Context(), seedTimeout)
	defer cancel()

	st, closeDB, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	if err != nil {
		return err
	}
	if err := es.Ping(ctx); err != nil {
		return err
	}

	index := store.NewInvestorIndex(es.Client, cfg.Database.Elasticsearch.InvestorIndex)
	n, err := indexInvestors(ctx, st, index, log)
	log.Info("investor directory indexed",
		zap.String("index", cfg.Database.Elasticsearch.InvestorIndex),
		zap.Int("indexed", n))
	return err
}
