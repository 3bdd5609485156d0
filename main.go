package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"fitgenius/api"
	"fitgenius/config"
	"fitgenius/database"
	"fitgenius/middleware"
	"fitgenius/repository"
	"fitgenius/services"
)

var rootCmd = &cobra.Command{
	Use:   "fitgenius",
	Short: "FitGenius training and nutrition API",
	Long: `FitGenius serves the training plan, assistant and diet log API.

Running without a subcommand is the same as "serve".`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadConfig()
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE:  runMigrate,
}

var dispatchInterval time.Duration

func init() {
	serveCmd.Flags().DurationVar(&dispatchInterval, "dispatch-interval", time.Minute, "how often due reminders are sent")
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("FATAL: [Main] %v", err)
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := database.Init()
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	log.Println("INFO: [Main] Database migration completed.")
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.AppConfig
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Init()
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	chatRepo := repository.NewChatRepository()
	profileRepo := repository.NewProfileRepository(db)
	planRepo := repository.NewPlanRepository(db)
	mealRepo := repository.NewMealRepository(db)
	reminderRepo := repository.NewReminderRepository(db)
	log.Println("INFO: [Main] Repositories initialized.")

	gateway := services.NewAIGateway(cfg.LLM)

	photos := services.NewDisabledPhotoStore()
	if cfg.Storage.Enabled {
		s3Photos, err := services.NewS3PhotoStore(ctx, cfg.Storage)
		if err != nil {
			log.Printf("WARN: [Main] Meal photo storage unavailable, photos are disabled: %v", err)
		} else {
			photos = s3Photos
		}
	}

	notifier := services.NewLogNotifier()
	if cfg.Notifications.Enabled {
		snsNotifier, err := services.NewSNSNotifier(ctx, cfg.Notifications)
		if err != nil {
			log.Printf("WARN: [Main] SNS notifier unavailable, reminders will only be logged: %v", err)
		} else {
			notifier = snsNotifier
		}
	}

	var store services.RecordStore
	if cfg.Sync.Enabled {
		firestoreStore, err := services.NewFirestoreRecordStore(ctx, cfg.Sync.ProjectID)
		if err != nil {
			log.Printf("WARN: [Main] Cloud sync unavailable: %v", err)
		} else {
			store = firestoreStore
		}
	}

	planService := services.NewPlanService(planRepo, profileRepo, gateway)
	profileService := services.NewProfileService(profileRepo, planRepo, chatRepo, gateway)
	assistantService := services.NewAssistantService(profileRepo, planRepo, chatRepo, planService, gateway, services.NewCommandInterpreter())
	dietService := services.NewDietService(mealRepo, gateway, photos)
	statsService := services.NewStatsService(planRepo, profileRepo)
	syncService := services.NewSyncService(store, profileRepo, planRepo, cfg.Sync)
	notificationService := services.NewNotificationService(reminderRepo, notifier, cfg.Notifications.Hour)
	log.Println("INFO: [Main] Services initialized.")

	apiHandler := api.NewAPIHandler(
		profileService,
		planService,
		assistantService,
		dietService,
		statsService,
		syncService,
		notificationService,
		gateway,
	)

	r := gin.New()
	r.Use(gin.Recovery())
	r.SetTrustedProxies(nil)
	r.Use(middleware.Logger())
	r.Use(middleware.Cors())
	api.RegisterRoutes(r, apiHandler)
	log.Println("INFO: [Main] Routes registered.")

	go notificationService.Run(ctx, dispatchInterval)

	port := cfg.Server.Port
	if port == "" {
		log.Println("WARN: [Main] Server port not configured, using default :8080.")
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: r}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("INFO: [Main] Starting server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("INFO: [Main] Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("INFO: [Main] Server stopped.")
	return nil
}
