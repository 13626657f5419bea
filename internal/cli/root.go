// Package cli implements the castline command tree.
package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/castline/castline-go/internal/api"
	"github.com/castline/castline-go/internal/cache"
	"github.com/castline/castline-go/internal/config"
	"github.com/castline/castline-go/internal/drafts"
	"github.com/castline/castline-go/internal/identity"
	"github.com/castline/castline-go/internal/threads"
)

var (
	cfgPath   string
	verbose   bool
	accountID int64
)

var rootCmd = &cobra.Command{
	Use:   "castline",
	Short: "Castline outreach inbox client",
	Long: `castline talks to the Castline podcast-outreach API: it lists and
sends drafts, resolves conversation threads, and runs auto-saving compose
sessions from the terminal.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file path (default is $HOME/.castline.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().Int64Var(&accountID, "account", 0, "operate on a shared mailbox account instead of your own")
}

// clientEnv bundles the wired SDK pieces every subcommand needs.
type clientEnv struct {
	cfg     *config.Config
	owner   identity.Identity
	drafts  *drafts.Client
	loader  *drafts.Loader
	threads *threads.Client
}

func newClientEnv() (*clientEnv, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if accountID > 0 {
		cfg.AccountID = accountID
	}

	transport := api.New(cfg.BaseURL, cfg.APIToken,
		api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)
	store := cache.New()
	draftClient := drafts.NewClient(transport)

	return &clientEnv{
		cfg:     cfg,
		owner:   cfg.Identity(),
		drafts:  draftClient,
		loader:  drafts.NewLoader(draftClient, store, 0),
		threads: threads.NewClient(transport, store, threads.LogNotifier{}, 0),
	}, nil
}
