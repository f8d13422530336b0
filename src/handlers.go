package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"ticketeira/src/models"
	"ticketeira/src/services"
	"ticketeira/src/types"

	"github.com/gin-gonic/gin"
)

type checkoutCreator interface {
	CreateCheckout(ctx context.Context, caller types.Caller, in services.CheckoutInput) (*services.CheckoutResult, error)
}

type paymentVerifier interface {
	VerifyAndMaterialize(ctx context.Context, caller types.Caller, sessionID string) (*services.VerifyResult, error)
}

type withdrawalProcessor interface {
	ProcessWithdrawal(ctx context.Context, caller types.Caller, in services.WithdrawalInput) (*services.WithdrawalResult, error)
}

type feeConfigManager interface {
	GetActiveFeeConfig(ctx context.Context, caller types.Caller) (*models.FeeConfig, error)
	UpdateFeeConfig(ctx context.Context, caller types.Caller, in services.FeeConfigInput) (*models.FeeConfig, error)
	SetProducerFee(ctx context.Context, caller types.Caller, in services.ProducerFeeInput) (*models.ProducerCustomFee, error)
}

type categoryCreator interface {
	CreateCategory(ctx context.Context, caller types.Caller, name, description string) (*models.Category, error)
}

// failure writes the uniform error response. Every failure is a 500 whose
// body carries only the caller-safe message.
func failure(ctx *gin.Context, err error) {
	slog.Info("Request failed",
		"path", ctx.FullPath(),
		"kind", types.KindOf(err),
		"error", err.Error(),
	)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": types.PublicMessage(err)})
}

func bindJSON(ctx *gin.Context, body any) bool {
	if err := ctx.ShouldBindJSON(body); err != nil {
		failure(ctx, bindError(err))
		return false
	}
	return true
}

// bindError names the offending field when the decoder reports one and keeps
// decoder text out of the response otherwise.
func bindError(err error) error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.Is(err, io.EOF):
		return types.Wrap(types.InvalidRequest, err, "request body is required")
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return types.Wrap(types.InvalidRequest, err, "invalid value for field %s", typeErr.Field)
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return types.Wrap(types.InvalidRequest, err, "request body is not valid JSON")
	}
	return types.Wrap(types.InvalidRequest, err, "invalid request body")
}
