package services

import (
	"context"
	"strings"
	"testing"
	"ticketeira/src/models"
	"ticketeira/src/types"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFeeConfigService(store *memStore) *FeeConfigService {
	return NewFeeConfigService(store, testFeeDefaults, NewActivityLogger(store, time.Second, discardLogger), time.Second, discardLogger)
}

func TestGetActiveFeeConfig_Defaults(t *testing.T) {
	svc := newFeeConfigService(newMemStore())

	cfg, err := svc.GetActiveFeeConfig(context.Background(), admin())
	require.NoError(t, err)
	assert.Equal(t, types.FEE_PERCENTAGE, cfg.PlatformFeeType)
	assert.Equal(t, "10.00", cfg.PlatformFeeValue.StringFixed(2))
	assert.Equal(t, "3.00", cfg.PaymentGatewayFeePercentage.StringFixed(2))
	assert.False(t, cfg.IsActive)

	_, err = svc.GetActiveFeeConfig(context.Background(), buyer())
	assertKind(t, err, types.Unauthorized)
}

func TestUpdateFeeConfig_KeepsSingleActiveRow(t *testing.T) {
	store := newMemStore()
	svc := newFeeConfigService(store)
	caller := admin()

	for _, v := range []string{"10", "12", "8.5"} {
		_, err := svc.UpdateFeeConfig(context.Background(), caller, FeeConfigInput{
			PlatformFeeValue:            dec(v),
			PlatformFeeType:             types.FEE_PERCENTAGE,
			PaymentGatewayFeePercentage: dec("3"),
			MinimumWithdrawalAmount:     dec("50"),
		})
		require.NoError(t, err)
	}

	require.Len(t, store.feeConfigs, 3)
	active := 0
	for _, c := range store.feeConfigs {
		if c.IsActive {
			active++
			assert.Equal(t, "8.50", c.PlatformFeeValue.StringFixed(2))
			require.NotNil(t, c.CreatedBy)
			assert.Equal(t, caller.ID, *c.CreatedBy)
		}
	}
	assert.Equal(t, 1, active)
	assert.Equal(t, []string{"fee_config_updated", "fee_config_updated", "fee_config_updated"}, store.activityActions())

	cfg, err := svc.GetActiveFeeConfig(context.Background(), caller)
	require.NoError(t, err)
	assert.True(t, cfg.IsActive)
}

func TestUpdateFeeConfig_Validation(t *testing.T) {
	svc := newFeeConfigService(newMemStore())
	cases := map[string]FeeConfigInput{
		"bad type":         {PlatformFeeValue: dec("1"), PlatformFeeType: "tiered", PaymentGatewayFeePercentage: dec("3")},
		"negative fee":     {PlatformFeeValue: dec("-1"), PlatformFeeType: types.FEE_FIXED, PaymentGatewayFeePercentage: dec("3")},
		"percentage > 100": {PlatformFeeValue: dec("101"), PlatformFeeType: types.FEE_PERCENTAGE, PaymentGatewayFeePercentage: dec("3")},
		"gateway > 100":    {PlatformFeeValue: dec("10"), PlatformFeeType: types.FEE_PERCENTAGE, PaymentGatewayFeePercentage: dec("120")},
		"negative minimum": {PlatformFeeValue: dec("10"), PlatformFeeType: types.FEE_PERCENTAGE, PaymentGatewayFeePercentage: dec("3"), MinimumWithdrawalAmount: dec("-5")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.UpdateFeeConfig(context.Background(), admin(), in)
			assertKind(t, err, types.InvalidRequest)
		})
	}
}

func TestUpdateFeeConfig_CallerCheckedFirst(t *testing.T) {
	store := newMemStore()
	svc := newFeeConfigService(store)
	in := FeeConfigInput{PlatformFeeValue: dec("-1"), PlatformFeeType: "tiered", PaymentGatewayFeePercentage: dec("120")}

	_, err := svc.UpdateFeeConfig(context.Background(), nil, in)
	assertKind(t, err, types.Unauthenticated)
	_, err = svc.UpdateFeeConfig(context.Background(), buyer(), in)
	assertKind(t, err, types.Unauthorized)

	_, err = svc.UpdateFeeConfig(context.Background(), admin(), in)
	e := assertKind(t, err, types.InvalidRequest)
	assert.Equal(t, "platformFeeValue must not be negative", e.Message)

	in.PlatformFeeValue = dec("5")
	_, err = svc.UpdateFeeConfig(context.Background(), admin(), in)
	e = assertKind(t, err, types.InvalidRequest)
	assert.Equal(t, "platformFeeType must be percentage or fixed", e.Message)

	in.PlatformFeeType = types.FEE_FIXED
	_, err = svc.UpdateFeeConfig(context.Background(), admin(), in)
	e = assertKind(t, err, types.InvalidRequest)
	assert.Equal(t, "paymentGatewayFeePercentage must be at most 100", e.Message)
	assert.Empty(t, store.feeConfigs)
}

func TestSetProducerFee(t *testing.T) {
	store := newMemStore()
	producer := &models.User{ID: uuid.New(), Role: types.ROLE_PRODUCER}
	store.users[producer.ID] = producer
	svc := newFeeConfigService(store)
	caller := admin()

	fee, err := svc.SetProducerFee(context.Background(), caller, ProducerFeeInput{
		ProducerID: producer.ID.String(), FeeValue: dec("2.00"), FeeType: types.FEE_FIXED, Active: true,
	})
	require.NoError(t, err)
	assert.True(t, fee.IsActive)

	_, err = svc.SetProducerFee(context.Background(), caller, ProducerFeeInput{
		ProducerID: producer.ID.String(), FeeValue: dec("4"), FeeType: types.FEE_PERCENTAGE, Active: true,
	})
	require.NoError(t, err)

	active, err := store.GetProducerCustomFee(context.Background(), producer.ID)
	require.NoError(t, err)
	assert.Equal(t, types.FEE_PERCENTAGE, active.FeeType)

	fee, err = svc.SetProducerFee(context.Background(), caller, ProducerFeeInput{ProducerID: producer.ID.String()})
	require.NoError(t, err)
	assert.Nil(t, fee)
	active, err = store.GetProducerCustomFee(context.Background(), producer.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	_, err = svc.SetProducerFee(context.Background(), caller, ProducerFeeInput{ProducerID: uuid.NewString(), Active: false})
	assertKind(t, err, types.NotFound)
}

func TestCreateCategory(t *testing.T) {
	store := newMemStore()
	svc := NewCategoryService(store, NewActivityLogger(store, time.Second, discardLogger), time.Second, discardLogger)

	first, err := svc.CreateCategory(context.Background(), admin(), "Shows & Música", "")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.ID)

	second, err := svc.CreateCategory(context.Background(), admin(), "Shows & Música", "outra")
	require.NoError(t, err)
	assert.Equal(t, first.Slug+"-2", second.Slug)

	_, err = svc.CreateCategory(context.Background(), admin(), "!!!", "")
	assertKind(t, err, types.InvalidRequest)

	_, err = svc.CreateCategory(context.Background(), buyer(), "Teatro", "")
	assertKind(t, err, types.Unauthorized)

	_, err = svc.CreateCategory(context.Background(), buyer(), strings.Repeat("a", 81), "")
	assertKind(t, err, types.Unauthorized)

	_, err = svc.CreateCategory(context.Background(), admin(), strings.Repeat("a", 81), "")
	e := assertKind(t, err, types.InvalidRequest)
	assert.Equal(t, "name must be at most 80 characters", e.Message)

	_, err = svc.CreateCategory(context.Background(), admin(), "   ", "")
	e = assertKind(t, err, types.InvalidRequest)
	assert.Equal(t, "name is required", e.Message)
}
