package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/prezentenergy/caasweb/internal/ai"
	"github.com/prezentenergy/caasweb/internal/config"
	"github.com/prezentenergy/caasweb/internal/db"
	"github.com/prezentenergy/caasweb/internal/filestore"
	"github.com/prezentenergy/caasweb/internal/handler"
	"github.com/prezentenergy/caasweb/internal/job"
	"github.com/prezentenergy/caasweb/internal/middleware"
	"github.com/prezentenergy/caasweb/internal/pkg/validate"
	"github.com/prezentenergy/caasweb/internal/repo"
	"github.com/prezentenergy/caasweb/internal/schedule"
	"github.com/prezentenergy/caasweb/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "caasweb",
		Short: "Prezent.Energy site backend",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json (optional, .env and environment are read either way)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := setup(configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			return runServer(cfg, conn)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := setup(configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			logutil.GetLogger(context.Background()).Info("migrations applied")
			return nil
		},
	}

	var outPath string
	var toStore bool
	exportCmd := &cobra.Command{
		Use:   "export-leads",
		Short: "write all leads as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := setup(configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			return exportLeads(cmd.Context(), cfg, conn, outPath, toStore, cmd.OutOrStdout())
		},
	}
	exportCmd.Flags().StringVar(&outPath, "out", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&toStore, "store", false, "write the export into the configured file store")

	rootCmd.AddCommand(runCmd, migrateCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

// setup loads configuration, starts logging and opens a migrated database.
func setup(configPath string) (*config.Config, *sql.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
	validate.Setup()

	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return cfg, conn, nil
}

func newLeadExporter(cfg *config.Config, leads *service.LeadService) (*service.LeadExporter, error) {
	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return nil, fmt.Errorf("init file store: %w", err)
	}
	return service.NewLeadExporter(leads, store), nil
}

func exportLeads(ctx context.Context, cfg *config.Config, conn *sql.DB, outPath string, toStore bool, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	leads := service.NewLeadService(repo.NewLeadRepo(conn))
	if toStore {
		exporter, err := newLeadExporter(cfg, leads)
		if err != nil {
			return err
		}
		key, err := exporter.ExportToStore(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, key)
		return err
	}
	w := stdout
	if outPath != "" {
		file, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer file.Close()
		w = file
	}
	rows, err := leads.ExportCSV(ctx, w)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("leads exported", zap.Int("rows", rows), zap.String("out", outPath))
	return nil
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("mail", cfg.Mail.Type),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.String("file_store", cfg.FileStore.Type),
	)

	leadRepo := repo.NewLeadRepo(conn)
	userRepo := repo.NewUserRepo(conn)
	codeRepo := repo.NewVerificationCodeRepo(conn)
	sessionRepo := repo.NewSessionRepo(conn)
	txManager := repo.NewTxManager(conn)

	mailSender, err := service.NewEmailSender(cfg.Mail)
	if err != nil {
		return fmt.Errorf("init mail sender: %w", err)
	}
	verifier := service.NewVerificationService(codeRepo, mailSender, cfg.Mail.Subject)
	sessionTTL := time.Duration(cfg.Session.TTLHours) * time.Hour
	authService := service.NewAuthService(userRepo, sessionRepo, verifier, txManager, sessionTTL)
	leadService := service.NewLeadService(leadRepo)

	provider, err := ai.NewProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return fmt.Errorf("init ai provider: %w", err)
	}
	llm := ai.NewClient(provider, ai.ClientConfig{Model: cfg.AI.Model, Timeout: cfg.AI.Timeout})
	chatService := service.NewChatService(llm, service.ChatConfig{
		ChatMaxTokens: cfg.AI.ChatMaxTokens,
		NewsMaxTokens: cfg.AI.NewsMaxTokens,
		MaxInputChars: cfg.AI.MaxInputChars,
	})

	exporter, err := newLeadExporter(cfg, leadService)
	if err != nil {
		return err
	}
	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewSessionCleanupJob(authService), cfg.Jobs.SessionCleanupCron); err != nil {
		return fmt.Errorf("schedule session cleanup: %w", err)
	}
	if err := scheduler.AddJob(job.NewLeadExportJob(exporter), cfg.Jobs.LeadExportCron); err != nil {
		return fmt.Errorf("schedule lead export: %w", err)
	}

	cookie := &middleware.SessionCookie{
		Name:   cfg.Session.CookieName,
		Secret: []byte(cfg.Session.Secret),
		TTL:    sessionTTL,
		Secure: cfg.Session.Secure,
	}
	deps := handler.RouterDeps{
		Leads:      handler.NewLeadHandler(leadService),
		Chat:       handler.NewChatHandler(chatService),
		Auth:       handler.NewAuthHandler(authService, cookie),
		Session:    middleware.Session(authService, cookie),
		RateLimit:  middleware.RateLimit(time.Duration(cfg.RateLimit.WindowSeconds)*time.Second, cfg.RateLimit.Max),
		BodyLimit:  middleware.BodyLimit(cfg.MaxBodySize),
		AdminToken: cfg.AdminToken,
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening",
		zap.String("addr", addr),
		zap.String("ai_provider", llm.ProviderName()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
