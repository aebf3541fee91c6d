package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"healthpanel-backend-go/internal/api"
	"healthpanel-backend-go/internal/billing"
	"healthpanel-backend-go/internal/config"
	"healthpanel-backend-go/internal/core"
	"healthpanel-backend-go/internal/db"
	"healthpanel-backend-go/internal/middleware"
	"healthpanel-backend-go/pkg/cache"
	"healthpanel-backend-go/pkg/mailer"
)

// syncInterCallDelay spaces consecutive billing API calls during bulk
// reconciliation to stay under Stripe's rate limits.
const syncInterCallDelay = 500 * time.Millisecond

func main() {
	// --- 1. Load .env (local development convenience; no-op when absent) ---
	_ = godotenv.Load()

	// --- 2. Initialize Logger (Zap) ---
	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Zap logger initialized successfully.")

	// --- 3. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded successfully.")

	// --- 4. Initialize Firebase Admin SDK (Firestore and Auth clients) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	if err := db.InitFirestore(initCtx, appConfig, zapLogger); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore and Firebase Admin SDK", zap.Error(err))
	}
	zapLogger.Info("Firebase Admin SDK (Firestore, Auth) initialized successfully.")

	firestoreClient := db.GetFirestoreClient()
	if firestoreClient == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firestore client is nil after initialization. Application cannot start.")
	}
	if db.GetFirebaseAuthClient() == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firebase Auth client is nil after initialization. Application cannot start.")
	}

	// --- 5. Initialize Repositories ---
	userRepo := db.NewFirestoreUserRepository(firestoreClient)
	companyRepo := db.NewFirestoreCompanyRepository(firestoreClient)
	companyUserRepo := db.NewFirestoreCompanyUserRepository(firestoreClient)
	planRepo := db.NewFirestorePlanRepository(firestoreClient)
	medicalRepo := db.NewFirestoreMedicalRecordRepository(firestoreClient)
	zapLogger.Info("Repositories initialized successfully.")

	// --- 6. Initialize Billing Client ---
	billingClient := billing.NewStripeClient(appConfig.StripeSecretKey)

	// --- 7. Optional Infrastructure (cache, ops mailer) ---
	var statsCache cache.Cache
	if appConfig.RedisAddr != "" {
		statsCache, err = cache.NewRedisCache(initCtx, cache.NewRedisCacheConfig{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		})
		if err != nil {
			// Stats degrade to store-only data without the cache.
			zapLogger.Warn("Redis cache unavailable, continuing without last-known-good stats", zap.Error(err))
			statsCache = nil
		} else {
			zapLogger.Info("Redis cache connected", zap.String("address", appConfig.RedisAddr))
		}
	}

	var opsMailer *mailer.Mailer
	if appConfig.SMTPHost != "" && appConfig.AlertsFrom != "" {
		opsMailer, err = mailer.New(mailer.Config{
			Host:     appConfig.SMTPHost,
			Port:     appConfig.SMTPPort,
			Username: appConfig.SMTPUser,
			Password: appConfig.SMTPPassword,
			From:     appConfig.AlertsFrom,
		})
		if err != nil {
			zapLogger.Warn("Mailer misconfigured, payment-failure alerts disabled", zap.Error(err))
			opsMailer = nil
		}
	} else {
		zapLogger.Info("SMTP not configured, payment-failure alerts disabled.")
	}

	// --- 8. Initialize Services ---
	userService := core.NewUserService(userRepo)
	companyService := core.NewCompanyService(companyRepo, companyUserRepo, appConfig.CompanyJWTSecret)
	planService := core.NewPlanService(planRepo)
	medicalService := core.NewMedicalService(medicalRepo, userRepo, companyUserRepo)
	billingService := core.NewBillingService(userRepo, billingClient, appConfig.AppBaseURL, zapLogger)
	syncService := core.NewSyncService(userRepo, billingClient, syncInterCallDelay, zapLogger)
	statsService := core.NewStatsService(userRepo, billingClient, statsCache, zapLogger)
	zapLogger.Info("Core services initialized successfully.")

	// --- 9. Setup Gin HTTP Engine ---
	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()

	// --- 10. Apply Global Middleware (order matters) ---
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig))
		zapLogger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))
	} else {
		zapLogger.Warn("CORS Middleware SKIPPED: CLIENT_URL is not configured. API might not be accessible from a web frontend.")
	}

	// --- 11. Setup API Routes ---
	api.SetupRoutes(
		router,
		appConfig,
		zapLogger,
		billingClient,
		opsMailer,
		userService,
		companyService,
		planService,
		medicalService,
		billingService,
		syncService,
		statsService,
	)

	// --- 12. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 13. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	zapLogger.Info("Attempting graceful shutdown of HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown due to error during graceful shutdown", zap.Error(err))
	}

	if err := firestoreClient.Close(); err != nil {
		zapLogger.Warn("Failed to close Firestore client", zap.Error(err))
	}

	zapLogger.Info("Server exiting gracefully.")
}
