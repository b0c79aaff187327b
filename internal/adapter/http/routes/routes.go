package routes

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/gnosis118/paper-n-print-sub000/docs" // swagger registration
	"github.com/gnosis118/paper-n-print-sub000/internal/adapter/http/handlers"
	"github.com/gnosis118/paper-n-print-sub000/internal/adapter/http/middleware"
	repository2 "github.com/gnosis118/paper-n-print-sub000/internal/adapter/persistence/repository"
	"github.com/gnosis118/paper-n-print-sub000/internal/infrastructure/cache"
	"github.com/gnosis118/paper-n-print-sub000/internal/infrastructure/database"
	"github.com/gnosis118/paper-n-print-sub000/internal/infrastructure/payments"
	"github.com/gnosis118/paper-n-print-sub000/internal/usecase"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var router = gin.Default()

const PORT = 8080

const maxPublicBodyBytes = 64 << 10

// Run will start the server
func Run() {
	setMiddlewares()

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	getRoutes()

	err := router.Run(":" + strconv.Itoa(PORT))
	if err != nil {
		log.Fatalf("Failed to startup the application: %v", err.Error())
	}
}

func getRoutes() {
	ddb := database.ConnectDynamoDB()

	estimateRepo := repository2.NewEstimateDynamoRepository(ddb)
	invoiceRepo := repository2.NewInvoiceDynamoRepository(ddb)
	sequenceRepo := repository2.NewSequenceDynamoRepository(ddb)

	gateway, err := payments.NewStripeGateway(os.Getenv("STRIPE_SECRET_KEY"))
	if err != nil {
		log.Fatalf("Stripe gateway not configured: %v", err)
	}

	estimateUseCase := usecase.NewEstimateUseCase(estimateRepo, sequenceRepo)
	lifecycleUseCase := usecase.NewLifecycleUseCase(estimateRepo, invoiceRepo, sequenceRepo, gateway)

	estimateHandler := handlers.NewEstimateHandler(estimateUseCase)
	lifecycleHandler := handlers.NewLifecycleHandler(estimateUseCase, lifecycleUseCase)

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addEstimateRoutes(v1, estimateHandler, lifecycleHandler)
	addPublicRoutes(v1, lifecycleHandler, publicGuards())
}

// publicGuards builds the middleware chain applied to the customer-facing
// share routes and the payment webhook.
func publicGuards() []gin.HandlerFunc {
	limit := envInt("RATE_LIMIT_PER_MINUTE", 60)

	var limiter middleware.RateLimiter
	if client := cache.ConnectRedis(); client != nil {
		limiter = cache.NewFixedWindowLimiter(client, int64(limit), time.Minute)
		log.Printf("[routes][setup] rate limiter=redis limit=%d/min", limit)
	} else {
		limiter = middleware.NewSlidingWindowLimiter(limit, time.Minute)
		log.Printf("[routes][setup] rate limiter=memory limit=%d/min", limit)
	}

	var origins []string
	for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return []gin.HandlerFunc{
		middleware.BodySizeLimit(maxPublicBodyBytes),
		middleware.OriginAllowList(origins),
		middleware.RequireUserAgent(),
		middleware.RateLimit(limiter),
	}
}

func setMiddlewares() {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(500)
	}))
}

func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		log.Printf("[routes][setup] invalid %s=%q, using default %d", key, raw, def)
		return def
	}
	return v
}
