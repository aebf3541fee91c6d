package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"healthpanel-backend-go/internal/billing"
	"healthpanel-backend-go/internal/config"
	"healthpanel-backend-go/internal/core"
	"healthpanel-backend-go/internal/db"
	"healthpanel-backend-go/internal/middleware"
	"healthpanel-backend-go/pkg/mailer"
)

// SetupRoutes configures all application routes with their handlers and
// middleware. Global middleware (logging, recovery, CORS) is applied to the
// router instance before this function is called, in main.go.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	billingClient billing.Client,
	opsMailer *mailer.Mailer,
	userService core.UserService,
	companyService core.CompanyService,
	planService core.PlanService,
	medicalService core.MedicalService,
	billingService core.BillingService,
	syncService core.SyncService,
	statsService core.StatsService,
) {
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firebaseAuthClient == nil {
		logger.Fatal("CRITICAL_SETUP_ERROR: Firebase Auth client is not initialized. Admin routes cannot be secured.")
		panic("Firebase Auth client is nil during route setup. Ensure db.InitFirestore() was called and succeeded.")
	}
	adminMW := middleware.NewAdminAuthMiddleware(firebaseAuthClient, logger)
	companyMW := middleware.NewCompanyAuthMiddleware(appConfig.CompanyJWTSecret, logger)

	authHandler := NewAuthHandler(companyService, logger)
	userHandler := NewUserHandler(userService, logger)
	companyHandler := NewCompanyHandler(companyService, logger)
	companyUserHandler := NewCompanyUserHandler(companyService, logger)
	planHandler := NewPlanHandler(planService, logger)
	medicalHandler := NewMedicalHandler(medicalService, logger)
	billingHandler := NewBillingHandler(billingService, syncService, logger)
	statsHandler := NewStatsHandler(statsService, logger)
	webhookHandler := NewWebhookHandler(billingClient, syncService, appConfig.StripeWebhookSecret, opsMailer, splitRecipients(appConfig.AlertsTo), logger)

	apiV1 := router.Group("/api/v1")
	{
		// --- Panel Endpoints (Firebase admins only) ---
		adminGroup := apiV1.Group("/admin", adminMW.RequireAdmin())
		{
			usersGroup := adminGroup.Group("/users")
			{
				usersGroup.POST("", userHandler.Create)
				usersGroup.GET("", userHandler.List)
				usersGroup.GET("/:userId", userHandler.Get)
				usersGroup.PATCH("/:userId", userHandler.Update)
				usersGroup.DELETE("/:userId", userHandler.Delete)

				// Medical records are nested under their owning user.
				medicalGroup := usersGroup.Group("/:userId/medical-records")
				{
					medicalGroup.POST("", medicalHandler.Create)
					medicalGroup.GET("", medicalHandler.List)
					medicalGroup.GET("/:recordId", medicalHandler.Get)
					medicalGroup.PATCH("/:recordId", medicalHandler.Update)
					medicalGroup.DELETE("/:recordId", medicalHandler.Delete)
				}

				// Per-user reconciliation against the billing provider.
				usersGroup.POST("/:userId/subscription/sync", billingHandler.SyncUser)
			}

			companiesGroup := adminGroup.Group("/companies")
			{
				companiesGroup.POST("", companyHandler.Create)
				companiesGroup.GET("", companyHandler.List)
				companiesGroup.GET("/:companyId", companyHandler.Get)
				companiesGroup.PATCH("/:companyId", companyHandler.Update)
				companiesGroup.DELETE("/:companyId", companyHandler.Delete)
			}

			plansGroup := adminGroup.Group("/plans")
			{
				plansGroup.POST("", planHandler.Create)
				plansGroup.GET("", planHandler.List)
				plansGroup.GET("/:planId", planHandler.Get)
				plansGroup.PATCH("/:planId", planHandler.Update)
				plansGroup.DELETE("/:planId", planHandler.Delete)
			}

			adminGroup.POST("/subscriptions/sync", billingHandler.SyncAll)
			adminGroup.GET("/stats/subscriptions", statsHandler.SubscriptionStats)

			billingGroup := adminGroup.Group("/billing")
			{
				billingGroup.POST("/checkout-session", billingHandler.CreateCheckoutSession)
				billingGroup.POST("/portal-session", billingHandler.CreatePortalSession)
			}
		}

		// --- Company Tenant Endpoints ---
		// Login is public; everything else under the company requires a
		// company-admin token whose companyId matches the path.
		apiV1.POST("/companies/:companyId/auth/login", authHandler.CompanyLogin)

		companyGroup := apiV1.Group("/companies/:companyId", companyMW.RequireCompanyAdmin())
		{
			companyGroup.GET("", companyHandler.GetProfile)
			companyGroup.PATCH("", companyHandler.UpdateProfile)

			companyUsersGroup := companyGroup.Group("/users")
			{
				companyUsersGroup.POST("", companyUserHandler.Create)
				companyUsersGroup.GET("", companyUserHandler.List)
				companyUsersGroup.GET("/:userId", companyUserHandler.Get)
				companyUsersGroup.PATCH("/:userId", companyUserHandler.Update)
				companyUsersGroup.DELETE("/:userId", companyUserHandler.Delete)

				companyUsersGroup.POST("/:userId/medical-records", medicalHandler.CreateForCompanyUser)
				companyUsersGroup.GET("/:userId/medical-records", medicalHandler.ListForCompanyUser)
			}
		}

		// --- Billing Webhook ---
		// Public endpoint. Stripe authenticates deliveries via signature,
		// verified inside the handler.
		apiV1.POST("/billing/webhooks/stripe", webhookHandler.HandleStripeWebhook)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Health panel backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}

// splitRecipients parses a comma-separated recipient list from config.
func splitRecipients(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if addr := strings.TrimSpace(p); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
