package main

import (
	"net/http"
	"ticketeira/src/middlewares"
	"ticketeira/src/types"

	"github.com/gin-gonic/gin"
)

func paymentHandlers(g *gin.RouterGroup, svc paymentVerifier, limiter gin.HandlerFunc) *gin.RouterGroup {
	g.
		POST("/payments/verify", limiter, func(ctx *gin.Context) {
			var body types.VerifyPaymentRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			res, err := svc.VerifyAndMaterialize(ctx.Request.Context(), middlewares.Caller(ctx), body.SessionID)
			if err != nil {
				failure(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, res)
		})
	return g
}
