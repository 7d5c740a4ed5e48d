package handler

import (
	"github.com/gin-gonic/gin"

	"donation-settle-api/internal/middleware"
)

type Handlers struct {
	Donations     *DonationHandler
	Splits        *SplitHandler
	Distributions *DistributionHandler
	Webhooks      *WebhookHandler
}

// Register mounts the API under /api/v1 and the rail callbacks under /webhooks.
func Register(r gin.IRouter, h Handlers) {
	v1 := r.Group("/api/v1", middleware.Actor())
	{
		v1.POST("/fees/quote", h.Donations.Quote)
		v1.POST("/donations", h.Donations.Create)

		v1.POST("/splits", h.Splits.Create)
		v1.GET("/splits/:id", h.Splits.Get)
		v1.POST("/splits/:id/accept", h.Splits.Accept)
		v1.POST("/splits/:id/reject", h.Splits.Reject)
		v1.GET("/organizations/:id/splits", h.Splits.ListByOrganization)

		v1.PUT("/organizations/:id/distribution", h.Distributions.Replace)
		v1.GET("/organizations/:id/distribution", h.Distributions.Get)
	}

	wh := r.Group("/webhooks")
	{
		wh.POST("/bank", h.Webhooks.Bank)
		wh.POST("/card", h.Webhooks.Card)
	}
}
