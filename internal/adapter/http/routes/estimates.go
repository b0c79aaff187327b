package routes

import (
	"github.com/gnosis118/paper-n-print-sub000/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathEstimates = "/estimates"
	PathInvoices  = "/invoices"
)

func addEstimateRoutes(rg *gin.RouterGroup, estimateHandler *handlers.EstimateHandler, lifecycleHandler *handlers.LifecycleHandler) {
	estimates := rg.Group(PathEstimates)
	{
		estimates.POST("", estimateHandler.CreateEstimate)
		estimates.GET("/:id", estimateHandler.GetEstimate)
		estimates.PUT("/:id", estimateHandler.UpdateEstimate)
		estimates.PATCH("/:id/send", estimateHandler.SendEstimate)
		estimates.POST("/:id/invoice", lifecycleHandler.MaterializeInvoice)
	}

	invoices := rg.Group(PathInvoices)
	{
		invoices.GET("/:estimate_id", lifecycleHandler.GetInvoice)
	}
}

func addPublicRoutes(rg *gin.RouterGroup, lifecycleHandler *handlers.LifecycleHandler, guards []gin.HandlerFunc) {
	public := rg.Group("/public", guards...)
	{
		public.GET("/estimates/:token", lifecycleHandler.GetPublicEstimate)
		public.POST("/estimates/:token/accept", lifecycleHandler.AcceptEstimate)
	}

	webhooks := rg.Group("/webhooks", guards...)
	{
		webhooks.POST("/stripe", lifecycleHandler.StripeWebhook)
	}
}
