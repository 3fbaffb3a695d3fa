package main

import (
	"context"
	"database/sql"
	"fmt"
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

	"github.com/pharmatrust/docvault/internal/config"
	"github.com/pharmatrust/docvault/internal/db"
	"github.com/pharmatrust/docvault/internal/filestore"
	"github.com/pharmatrust/docvault/internal/handler"
	"github.com/pharmatrust/docvault/internal/job"
	"github.com/pharmatrust/docvault/internal/middleware"
	"github.com/pharmatrust/docvault/internal/repo"
	"github.com/pharmatrust/docvault/internal/schedule"
	"github.com/pharmatrust/docvault/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "docvault",
		Short: "docvault document control server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run docvault server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
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

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("file_store", cfg.FileStore.Type),
	)

	userRepo := repo.NewUserRepo(conn)
	docRepo := repo.NewDocumentRepo(conn)
	versionRepo := repo.NewVersionRepo(conn)
	draftRepo := repo.NewDraftRepo(conn)
	mergeRepo := repo.NewMergeRequestRepo(conn)
	auditRepo := repo.NewAuditRepo(conn)
	reportJobRepo := repo.NewReportJobRepo(conn)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	auditService := service.NewAuditService(auditRepo)
	authService := service.NewAuthService(userRepo, []byte(cfg.JWTSecret), time.Hour*time.Duration(cfg.JWTTTLHours))
	userService := service.NewUserService(userRepo, authService, auditService)
	documentService := service.NewDocumentService(conn, docRepo, versionRepo, auditService)
	draftService := service.NewDraftService(draftRepo, docRepo, versionRepo, mergeRepo, auditService)
	mergeService := service.NewMergeService(conn, mergeRepo, draftRepo, docRepo, versionRepo, userRepo, auditService)
	reportService := service.NewReportService(reportJobRepo, docRepo, versionRepo, auditRepo, auditService, store, cfg.Report.QueueSize)

	if cfg.Bootstrap.AdminEmail != "" {
		if err := userService.Bootstrap(context.Background(), cfg.Bootstrap.AdminName, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	deps := handler.RouterDeps{
		Auth:      handler.NewAuthHandler(authService),
		Users:     handler.NewUserHandler(userService),
		Documents: handler.NewDocumentHandler(documentService),
		Versions:  handler.NewVersionHandler(documentService),
		Drafts:    handler.NewDraftHandler(draftService),
		Merges:    handler.NewMergeHandler(mergeService),
		Audit:     handler.NewAuditHandler(auditService),
		Reports:   handler.NewReportHandler(reportService),
		Files:     handler.NewFileHandler(store),
		AuthSvc:   authService,
		JWTSecret: []byte(cfg.JWTSecret),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reportService.Start(ctx)

	scheduler := schedule.NewCronScheduler()
	retention := time.Duration(cfg.Report.RetentionHours) * time.Hour
	if err := scheduler.AddJob(job.NewReportCleanupJob(reportJobRepo, store, retention), cfg.Report.CleanupSpec); err != nil {
		return fmt.Errorf("schedule report cleanup: %w", err)
	}
	scheduler.Start(ctx)

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	scheduler.Stop()
	reportService.Wait()
	return nil
}
