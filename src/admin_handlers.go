package main

import (
	"net/http"
	"ticketeira/src/middlewares"
	"ticketeira/src/services"
	"ticketeira/src/types"

	"github.com/gin-gonic/gin"
)

func adminHandlers(g *gin.RouterGroup, fees feeConfigManager, categories categoryCreator) *gin.RouterGroup {
	g.
		GET("/fees", func(ctx *gin.Context) {
			cfg, err := fees.GetActiveFeeConfig(ctx.Request.Context(), middlewares.Caller(ctx))
			if err != nil {
				failure(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": cfg})
		}).
		POST("/fees", func(ctx *gin.Context) {
			var body types.UpdateFeeConfigRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			cfg, err := fees.UpdateFeeConfig(ctx.Request.Context(), middlewares.Caller(ctx), services.FeeConfigInput{
				PlatformFeeValue:            body.PlatformFeeValue,
				PlatformFeeType:             types.FeeType(body.PlatformFeeType),
				PaymentGatewayFeePercentage: body.PaymentGatewayFeePercentage,
				MinimumWithdrawalAmount:     body.MinimumWithdrawalAmount,
			})
			if err != nil {
				failure(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": cfg})
		}).
		POST("/producers/fee", func(ctx *gin.Context) {
			var body types.SetProducerFeeRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			in := services.ProducerFeeInput{
				ProducerID: body.ProducerID,
				FeeValue:   body.FeeValue,
				FeeType:    types.FeeType(body.FeeType),
				Active:     body.Active,
			}
			fee, err := fees.SetProducerFee(ctx.Request.Context(), middlewares.Caller(ctx), in)
			if err != nil {
				failure(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": fee})
		}).
		POST("/categories", func(ctx *gin.Context) {
			var body types.CreateCategoryRequestBody
			if !bindJSON(ctx, &body) {
				return
			}
			category, err := categories.CreateCategory(ctx.Request.Context(), middlewares.Caller(ctx), body.Name, body.Description)
			if err != nil {
				failure(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": category})
		})
	return g
}
