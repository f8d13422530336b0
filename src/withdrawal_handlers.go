package main

import (
	"net/http"
	"ticketeira/src/middlewares"
	"ticketeira/src/services"
	"ticketeira/src/types"

	"github.com/gin-gonic/gin"
)

func withdrawalHandlers(g *gin.RouterGroup, svc withdrawalProcessor) *gin.RouterGroup {
	g.
		POST("/withdrawals/process", func(ctx *gin.Context) {
			var body types.ProcessWithdrawalRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			res, err := svc.ProcessWithdrawal(ctx.Request.Context(), middlewares.Caller(ctx), services.WithdrawalInput{
				WithdrawalID:    body.WithdrawalID,
				Action:          body.Action,
				RejectionReason: body.RejectionReason,
			})
			if err != nil {
				failure(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, res)
		})
	return g
}
