package main

import (
	"context"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/athletenexus-api/api/swagger"
	"github.com/noah-isme/athletenexus-api/internal/handler"
	"github.com/noah-isme/athletenexus-api/internal/middleware"
	"github.com/noah-isme/athletenexus-api/internal/models"
	"github.com/noah-isme/athletenexus-api/pkg/config"
	"github.com/noah-isme/athletenexus-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/athletenexus-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/athletenexus-api/pkg/middleware/requestid"
)

func newRouter(cfg *config.Config, a *app, logr *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(a.metrics))
	r.Use(middleware.WithResponseMeta())

	checks := map[string]handler.ReadinessCheck{"database": a.db.PingContext}
	if a.cache != nil {
		checks["redis"] = func(ctx context.Context) error { return a.cache.Ping(ctx) }
	}
	metricsHandler := handler.NewMetricsHandler(a.metrics, checks)
	authHandler := handler.NewAuthHandler(a.auth)
	classHandler := handler.NewClassHandler(a.classes)
	selectionHandler := handler.NewSelectionHandler(a.selections)
	paymentHandler := handler.NewPaymentHandler(a.intents, a.payments, a.exports)
	userHandler := handler.NewUserHandler(a.users)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	auth := middleware.JWT(a.auth)
	admin := middleware.RequireRoles(a.auth, models.RoleAdmin)
	selfOrAdmin := middleware.SelfOrRoles(a.auth, "email", models.RoleAdmin)
	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(a.audit, logr, action, resource)
	}

	api.POST("/jwt", authHandler.IssueToken)
	api.GET("/metrics/summary", auth, admin, metricsHandler.Summary)

	users := api.Group("/users")
	users.POST("", userHandler.Create)
	users.GET("", auth, admin, userHandler.List)
	users.GET("/role", auth, selfOrAdmin, userHandler.Role)
	users.PATCH("/role", auth, admin, audit(models.AuditActionUserRoleUpdate, "user"), userHandler.UpdateRole)
	users.DELETE("", auth, admin, audit(models.AuditActionUserDelete, "user"), userHandler.Delete)

	classes := api.Group("/classes")
	classes.GET("", classHandler.List)
	classes.GET("/approved", classHandler.ListView(models.ClassViewApproved))
	classes.GET("/popular", classHandler.ListView(models.ClassViewPopular))
	classes.GET("/pending", auth, admin, classHandler.ListView(models.ClassViewPending))
	classes.GET("/denied", auth, admin, classHandler.ListView(models.ClassViewDenied))
	classes.GET("/instructor", auth, selfOrAdmin, classHandler.ListByInstructor)
	classes.POST("", auth, middleware.RequireRoles(a.auth, models.RoleInstructor, models.RoleAdmin), audit(models.AuditActionClassCreate, "class"), classHandler.Create)
	classes.PATCH("/status", auth, admin, audit(models.AuditActionClassStatus, "class"), classHandler.SetStatus)
	classes.PATCH("/feedback", auth, admin, audit(models.AuditActionClassFeedback, "class"), classHandler.SetFeedback)
	classes.GET("/selected", auth, selfOrAdmin, selectionHandler.List)
	classes.POST("/selected", auth, middleware.RequireRoles(a.auth, models.RoleStudent), selectionHandler.Add)
	classes.DELETE("/selected", auth, selfOrAdmin, selectionHandler.Remove)
	classes.GET("/:id", middleware.OptionalJWT(a.auth), classHandler.Get)

	api.POST("/create-payment-intent", auth, paymentHandler.CreateIntent)
	payments := api.Group("/payments")
	payments.POST("", auth, middleware.RequireRoles(a.auth, models.RoleStudent, models.RoleAdmin), audit(models.AuditActionPaymentRecord, "payment"), paymentHandler.Record)
	payments.GET("/history", auth, admin, paymentHandler.History)
	payments.GET("/history/export", auth, admin, paymentHandler.Export)
	payments.GET("/enrolled/student", auth, selfOrAdmin, paymentHandler.EnrolledByStudent)
	payments.GET("/enrolled/instructor", auth, selfOrAdmin, paymentHandler.EnrolledByInstructor)
	payments.GET("/:id/receipt", auth, paymentHandler.Receipt)

	return r
}
