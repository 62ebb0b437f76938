package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/teamboardhq/teamboard/internal/config"
	"github.com/teamboardhq/teamboard/internal/docserver"
	"github.com/teamboardhq/teamboard/internal/filestore"
	"github.com/teamboardhq/teamboard/internal/handler"
	"github.com/teamboardhq/teamboard/internal/job"
	"github.com/teamboardhq/teamboard/internal/middleware"
	"github.com/teamboardhq/teamboard/internal/repo"
	"github.com/teamboardhq/teamboard/internal/schedule"
	"github.com/teamboardhq/teamboard/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "teamboard",
		Short: "teamboard backend server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run teamboard server",
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

			db, err := repo.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := repo.ApplyMigrations(db); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, db)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, db *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("db_path", cfg.DBPath),
		zap.String("file_store", cfg.FileStore.Type),
		zap.String("doc_server", cfg.DocServer.URL),
	)

	attachmentRepo := repo.NewAttachmentRepo(db)
	versionRepo := repo.NewVersionRepo(db)
	userRepo := repo.NewUserRepo(db)
	memberRepo := repo.NewMemberRepo(db)

	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return fmt.Errorf("init file store: %w", err)
	}

	dropper := docserver.NewCommandClient(cfg.DocServer)
	sessions := docserver.NewSessionBuilder(cfg.DocServer)
	collabService := service.NewCollabService(attachmentRepo, versionRepo, userRepo, memberRepo, store, dropper)

	collabHandler := handler.NewCollabHandler(collabService, sessions, userRepo, store, cfg.DocServer)
	versionHandler := handler.NewVersionHandler(collabService)
	attachmentHandler := handler.NewAttachmentHandler(collabService, memberRepo)

	deps := handler.RouterDeps{
		Collab:      collabHandler,
		Versions:    versionHandler,
		Attachments: attachmentHandler,
		JWTSecret:   []byte(cfg.JWTSecret),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(nil),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewVersionPruneJob(attachmentRepo, versionRepo, store, cfg.VersionMaxKeep), "30 3 * * *"); err != nil {
		return err
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
