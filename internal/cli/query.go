package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexidex/lexidex/internal/config"
	"github.com/lexidex/lexidex/internal/domain"
	logpkg "github.com/lexidex/lexidex/internal/logger"
	queryuc "github.com/lexidex/lexidex/internal/usecase/query"
)

var (
	queryTopN   int
	queryPretty bool
)

var queryCmd = &cobra.Command{
	Use:   "query WORD...",
	Short: "Run a one-shot common-words query against the loaded table",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().IntVar(&queryTopN, "top-n", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryPretty, "pretty", false, "indent the JSON output")
}

func runQuery(cmd *cobra.Command, args []string) error {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Keep startup noise off stdout: the query output is the product here.
	logger, err := logpkg.NewLogger(env, "warn")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	table, _, err := loadTable(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load vector table: %w", err)
	}
	defer table.Close()

	querySvc := queryuc.New(table, logger).
		WithLimits(cfg.Query.DefaultTopN, cfg.Query.MaxTopN)

	result, err := querySvc.FindCommonWords(cmd.Context(), args, queryTopN)
	if err != nil {
		return err
	}

	return printResult(result)
}

func printResult(result domain.QueryResult) error {
	out := struct {
		InputWords    []string            `json:"input_words"`
		TopNRequested int                 `json:"top_n_requested"`
		CommonWords   []domain.RankedWord `json:"common_words"`
	}{
		InputWords:    result.InputWords,
		TopNRequested: result.TopNRequested,
		CommonWords:   result.CommonWords,
	}

	enc := json.NewEncoder(os.Stdout)
	if queryPretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
