package main

import (
	"net/http"
	"ticketeira/src/middlewares"
	"ticketeira/src/services"
	"ticketeira/src/types"

	"github.com/gin-gonic/gin"
)

func checkoutHandlers(g *gin.RouterGroup, svc checkoutCreator, limiter gin.HandlerFunc) *gin.RouterGroup {
	g.
		POST("/checkout", limiter, func(ctx *gin.Context) {
			var body types.CreateCheckoutRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			res, err := svc.CreateCheckout(ctx.Request.Context(), middlewares.Caller(ctx), services.CheckoutInput{
				EventID:  body.EventID,
				TicketID: body.TicketID,
				Quantity: body.Quantity,
			})
			if err != nil {
				failure(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"url": res.URL, "sessionId": res.SessionID})
		})
	return g
}
