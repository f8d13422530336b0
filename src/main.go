package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strconv"
	"ticketeira/src/boot"
	"ticketeira/src/config"
	"ticketeira/src/middlewares"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const (
	apiPrefix string = "/api/v1"
)

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		if on, _ := strconv.ParseBool(os.Getenv("MAINTENANCE_MODE")); on {
			err := errors.New("server is under maintenance")
			slog.Warn(err.Error(), "path", ctx.Request.URL.Path)
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
	})
	return g
}

// corsMiddleware answers browser preflight for any origin.
func corsMiddleware() gin.HandlerFunc {
	cc := cors.DefaultConfig()
	cc.AllowAllOrigins = true
	cc.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization", "x-client-info", "apikey")
	cc.MaxAge = 12 * time.Hour
	return cors.New(cc)
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

type app struct {
	identity    gin.HandlerFunc
	checkout    checkoutCreator
	verify      paymentVerifier
	withdrawals withdrawalProcessor
	fees        feeConfigManager
	categories  categoryCreator
	redis       *redis.Client
	rateLimit   int64
}

func registerRoutes(router *gin.Engine, a *app) *gin.RouterGroup {
	apiv1 := apiv1Group(router)
	if a.identity != nil {
		apiv1.Use(a.identity)
	}
	checkoutHandlers(apiv1, a.checkout, middlewares.RateLimit(a.redis, "checkout", a.rateLimit))
	paymentHandlers(apiv1, a.verify, middlewares.RateLimit(a.redis, "verify", a.rateLimit))
	withdrawalHandlers(apiv1, a.withdrawals)
	adminHandlers(apiv1.Group("/admin"), a.fees, a.categories)
	return apiv1
}

func initLogger(cfg *config.Config) *slog.Logger {
	var w io.Writer = os.Stdout
	if cfg.LogFile != "" {
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    500,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		})
	}
	level := slog.LevelDebug
	if cfg.IsProd() {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	gin.DefaultWriter = w
	return logger
}

func main() {
	if os.Getenv("API_ENV") == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			slog.Warn("No .env file loaded", "error", err.Error())
		}
	}
	cfg := config.Load()
	logger := initLogger(cfg)
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	d := boot.InitDb()
	svc, err := boot.InitServices(context.Background(), cfg, d, logger)
	if err != nil {
		slog.Error("Could not initialize services", "error", err.Error())
		os.Exit(1)
	}

	router := setupRouter()
	router.Use(corsMiddleware())
	router = maintenanceModeMiddleware(router)

	registerRoutes(router, &app{
		identity:    middlewares.BearerIdentity([]byte(cfg.JWTSecret), svc.Store),
		checkout:    svc.Checkout,
		verify:      svc.Verify,
		withdrawals: svc.Withdrawals,
		fees:        svc.FeeConfig,
		categories:  svc.Categories,
		redis:       svc.Redis,
		rateLimit:   cfg.RateLimitPerMinute,
	})

	slog.Info("Server listening", "port", cfg.Port, "env", cfg.APIEnv)
	if err := router.Run(":" + cfg.Port); err != nil {
		slog.Error("Server stopped", "error", err.Error())
		os.Exit(1)
	}
}
