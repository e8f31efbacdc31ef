package router

import (
	"github.com/ayurcare-next/internal/cache"
	"github.com/ayurcare-next/internal/config"
	"github.com/ayurcare-next/internal/constants"
	publichandlers "github.com/ayurcare-next/internal/http/handlers/public"
	"github.com/ayurcare-next/internal/http/response"
	"github.com/ayurcare-next/internal/i18n"
	"github.com/ayurcare-next/internal/logger"
	"github.com/ayurcare-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := publichandlers.New(c)
	redisClient := cache.Client()
	paymentRule := RateLimitRule{
		Prefix:        cache.Key("rate", "payment"),
		WindowSeconds: cfg.Security.PaymentRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.PaymentRateLimit.MaxAttempts,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/healthz", func(ctx *gin.Context) {
		response.Success(ctx, gin.H{
			"status": "ok",
			"redis":  cache.Health(ctx.Request.Context()),
		})
	})
	r.NoRoute(func(ctx *gin.Context) {
		response.NotFound(ctx, i18n.T(i18n.ResolveLocale(ctx), "error.not_found"))
	})

	apiV1 := r.Group("/api/v1")
	apiV1.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
	{
		payments := apiV1.Group("/payments")
		{
			payments.GET("/key", handler.GetPaymentKey)
			payments.POST("/initiate", RateLimitMiddleware(redisClient, paymentRule, KeyByUser), handler.InitiatePayment)
			payments.POST("/confirm", RateLimitMiddleware(redisClient, paymentRule, KeyByUser), handler.ConfirmPayment)
			payments.POST("/fail", handler.FailPayment)
		}

		apiV1.GET("/cart", handler.GetCart)
		apiV1.POST("/cart/items", handler.UpsertCartItem)
		apiV1.DELETE("/cart/items/:product_id", handler.DeleteCartItem)

		apiV1.POST("/orders/checkout", handler.Checkout)

		apiV1.POST("/appointments", handler.CreateAppointment)
		apiV1.GET("/appointments", handler.ListAppointments)

		doctor := apiV1.Group("/doctor")
		doctor.Use(RequireRole(constants.UserRoleDoctor))
		{
			doctor.POST("/appointments/:id/confirm", handler.DoctorConfirmAppointment)
		}
	}

	return r
}
