package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"giveaway/internal/config"
	"giveaway/internal/docstore"
	"giveaway/internal/handlers"
	"giveaway/internal/notify"
	"giveaway/internal/offerapi"
	"giveaway/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/google/logger"
	"github.com/spf13/cobra"
)

//go:embed all:assets
var assetsFS embed.FS

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		envFile    string
		logFile    string
	)

	cmd := &cobra.Command{
		Use:           "giveaway",
		Short:         "Prize giveaway site",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file with GIVEAWAY_* overrides")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also append logs to this file")

	load := func() (*config.Config, error) {
		var w io.Writer = io.Discard
		if logFile != "" {
			f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("failed to open log file: %w", err)
			}
			w = f
		}
		logger.Init("giveaway", true, false, w)
		return config.Load(configPath, envFile)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Recount participants and winners once and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			store, err := openStore(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := services.NewStatsService(store, notify.LogSink{}).Refresh(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "participants: %d\nverified: %d\nwinners: %d\n",
				stats.TotalParticipants, stats.VerifiedParticipants, stats.TotalWinners)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import-proofs <file.csv>",
		Short: "Import proof-of-draw records from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			store, err := openStore(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			added, err := services.NewProofService(store).ImportCSV(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("import stopped after %d rows: %w", added, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d proofs\n", added)
			return nil
		},
	})

	return cmd
}

func openStore(path string) (*docstore.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return docstore.Open(path)
}

func serve(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Admin.Password == config.DefaultConfig().Admin.Password {
		logger.Warningf("Admin password is the default one, set GIVEAWAY_ADMIN_PASSWORD")
	}
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. Open the document store
	store, err := openStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	// 2. Start the websocket hub; it doubles as the toast sink of the admin pages
	hub := handlers.NewHub()
	go hub.Run(ctx)
	sink := notify.Multi{notify.LogSink{}, hub}

	// 3. Initialize the services
	participants := services.NewParticipantService(store, sink)
	stats := services.NewStatsService(store, sink)
	modals := services.NewSuccessModals(cfg.Modal.Delay)

	// 4. Load HTML templates
	templates, err := handlers.ParseTemplates()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	// 5. Initialize the HTTP Handler
	httpHandler := handlers.NewHTTPHandler(handlers.Deps{
		Participants:    participants,
		Verifier:        services.NewVerifier(store, sink),
		Proofs:          services.NewProofService(store),
		Stats:           stats,
		SocialLinks:     services.NewSocialLinks(store, sink),
		Modals:          modals,
		Offers:          offerapi.NewClient(cfg.Offers.APIBaseURL, cfg.Offers.APITimeout),
		Hub:             hub,
		Templates:       templates,
		RedirectBaseURL: cfg.Offers.RedirectBaseURL,
		DefaultLanguage: cfg.Locale.Default,
	})

	// 6. Set up the Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Server.Debug {
		r.Use(gin.Logger())
	}

	assetsSubFS, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		return fmt.Errorf("failed to create assets sub-filesystem: %w", err)
	}
	r.StaticFS("/assets", http.FS(assetsSubFS))

	// 7. Register public routes, then the admin group behind basic auth
	httpHandler.RegisterPublicRoutes(r)
	admin := r.Group("/admin")
	admin.Use(httpHandler.AdminMiddleware(cfg.Admin.Username, cfg.Admin.Password))
	httpHandler.RegisterAdminRoutes(admin)

	// 8. Schedule the background jobs
	scheduler, err := startJobs(ctx, cfg, stats, modals)
	if err != nil {
		return err
	}
	defer scheduler.Stop()

	// 9. Run the server until interrupted
	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on %s", cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to run server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Infof("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// startJobs schedules the stats refresh and the success session janitor.
func startJobs(ctx context.Context, cfg *config.Config, stats *services.StatsService, modals *services.SuccessModals) (*gocron.Scheduler, error) {
	s := gocron.NewScheduler(time.UTC)

	_, err := s.Every(seconds(cfg.Stats.RefreshInterval)).Seconds().Do(func() {
		if _, err := stats.Refresh(ctx); err != nil {
			logger.Errorf("Scheduled stats refresh failed: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule stats refresh: %w", err)
	}

	_, err = s.Every(seconds(cfg.Modal.JanitorInterval)).Seconds().Do(func() {
		modals.CleanUpInactive(cfg.Modal.MaxAge)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule session cleanup: %w", err)
	}

	s.StartAsync()
	return s, nil
}

func seconds(d time.Duration) uint64 {
	if d < time.Second {
		return 1
	}
	return uint64(d / time.Second)
}
