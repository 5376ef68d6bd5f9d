package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vitos/case_index/internal/config"
	"github.com/vitos/case_index/internal/domain"
	"github.com/vitos/case_index/internal/infrastructure/logger"
	"github.com/vitos/case_index/internal/infrastructure/priceapi"
	"github.com/vitos/case_index/internal/query"
	"github.com/vitos/case_index/internal/scheduler"
	"github.com/vitos/case_index/internal/usecase"
	"github.com/vitos/case_index/internal/web"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// app holds what every subcommand needs once config is loaded.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	cache   *query.Client
	service *usecase.MarketService
}

func newApp(configPath string, debug bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if debug {
		cfg.Logging.Level = "debug"
	}

	log, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	api := priceapi.NewClient(cfg.API.BaseURL, cfg.API.Timeout, log)
	cache := query.NewClient(cfg.Cache.GCTime, log)
	svc := usecase.NewMarketService(api, cache, usecase.MarketServiceConfig{
		PageSize:        cfg.API.PageSize,
		TopMovers:       cfg.Search.TopMovers,
		Freshness:       cfg.Cache.Freshness,
		SearchFreshness: cfg.Cache.SearchFreshness,
		Retries:         cfg.Cache.Retries,
		RetryDelay:      cfg.Cache.RetryDelay,
	}, log)

	return &app{cfg: cfg, log: log, cache: cache, service: svc}, nil
}

// NewRootCmd creates the root command
func NewRootCmd(version string) *cobra.Command {
	var a *app

	rootCmd := &cobra.Command{
		Use:   "caseindex",
		Short: "Case Index - market price changes for cases",
		Long: `Case Index browses price changes reported by the price-change API.
It serves a web UI with live search and renders the same views in the terminal.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			path, _ := cmd.Flags().GetString("config")
			debug, _ := cmd.Flags().GetBool("debug")
			var err error
			a, err = newApp(path, debug)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				_ = a.log.Sync()
			}
		},
	}

	rootCmd.AddCommand(newServeCmd(&a))
	rootCmd.AddCommand(newSearchCmd(&a))
	rootCmd.AddCommand(newItemCmd(&a))
	rootCmd.AddCommand(newMoversCmd(&a))
	rootCmd.AddCommand(newVersionCmd(version))

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "config/config.yaml", "Configuration file path")

	return rootCmd
}

func newServeCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			port, _ := cmd.Flags().GetInt("port")
			return runServe(*a, port)
		},
	}
	cmd.Flags().Int("port", 0, "Listen port (overrides server.port)")
	return cmd
}

func runServe(a *app, port int) error {
	if port == 0 {
		port = a.cfg.Server.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(ctx, a.cache, a.service, a.log)
	if err := sched.Register(a.cfg.Cache.SweepCron, a.cfg.Cache.WarmCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	go a.service.WarmTopMovers(ctx)

	server := web.NewServer(port, a.service, a.cfg.Search.Debounce, a.log)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newSearchCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [QUERY]",
		Short: "Search price changes",
		Long: `Search price changes by name. Without a query all cases are listed.
Example: caseindex search Chroma --page=2 --sort=losers`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := domain.SearchParams{Page: 1}
			if len(args) == 1 {
				params.Query = args[0]
			}
			params.Page, _ = cmd.Flags().GetInt("page")
			sortBy, _ := cmd.Flags().GetString("sort")
			params.SortBy = domain.ParseSortOption(sortBy)
			if params.Page < 1 {
				return fmt.Errorf("page must be at least 1, got %d", params.Page)
			}

			svc := (*a).service
			page, err := svc.Search(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), RenderSearch(params, page, svc.PageSize()))
			return nil
		},
	}
	cmd.Flags().Int("page", 1, "Result page (1-based)")
	cmd.Flags().String("sort", string(domain.SortGainers), "Sort order: gainers or losers")
	return cmd
}

func newItemCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item [ITEM_ID]",
		Short: "Show an item's price history and statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("item %q: %w", args[0], domain.ErrItemNotFound)
			}
			raw, _ := cmd.Flags().GetString("interval")
			interval, err := domain.ParseChartInterval(raw)
			if err != nil {
				return err
			}

			detail := (*a).service.ItemDetail(cmd.Context(), id, interval)
			if detail.NotFound() {
				return fmt.Errorf("item %d: %w", id, domain.ErrItemNotFound)
			}
			fmt.Fprint(cmd.OutOrStdout(), RenderItem(detail))
			return nil
		},
	}
	cmd.Flags().String("interval", string(domain.DefaultChartInterval), "Chart interval: 7d, 1m, 3m or 6m")
	return cmd
}

func newMoversCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "movers",
		Short: "Show the top gainers and losers",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := (*a).service.Home(cmd.Context())
			fmt.Fprint(cmd.OutOrStdout(), RenderMovers(home))
			if home.Gainers.Failed() && home.Losers.Failed() {
				return errors.Join(home.Gainers.Err, home.Losers.Err)
			}
			return nil
		},
	}
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "caseindex %s\n", version)
		},
	}
}
