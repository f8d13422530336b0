package boot

import (
	"context"
	"log/slog"
	"os"
	"ticketeira/src/config"
	"ticketeira/src/db"
	"ticketeira/src/lib"
	"ticketeira/src/lib/mailer"
	"ticketeira/src/models"
	"ticketeira/src/services"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	d := db.GetDb()
	if err := Migrate(d); err != nil {
		slog.Error("error migration", "error", err.Error())
		os.Exit(1)
	}
	return d
}

func Migrate(d *gorm.DB) error {
	return d.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Event{},
		&models.Ticket{},
		&models.FeeConfig{},
		&models.ProducerCustomFee{},
		&models.SaleBatch{},
		&models.Sale{},
		&models.WithdrawalRequest{},
		&models.ActivityLog{},
	)
}

type Services struct {
	Store       *db.Store
	Checkout    *services.CheckoutService
	Verify      *services.VerifyService
	Withdrawals *services.WithdrawalService
	FeeConfig   *services.FeeConfigService
	Categories  *services.CategoryService
	Redis       *redis.Client
}

func InitServices(ctx context.Context, cfg *config.Config, d *gorm.DB, logger *slog.Logger) (*Services, error) {
	store := db.NewStore(d)
	gateway := lib.NewStripeGateway(lib.GetStripeClient(cfg.StripeSecretKey, cfg.UpstreamTimeout))
	notifier, err := mailer.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	fees := services.FeeDefaults{
		PlatformFeePercentage: cfg.DefaultPlatformFeePercentage,
		GatewayFeePercentage:  cfg.DefaultGatewayFeePercentage,
	}
	activity := services.NewActivityLogger(store, cfg.UpstreamTimeout, logger)

	return &Services{
		Store: store,
		Checkout: services.NewCheckoutService(store, store, gateway, services.CheckoutConfig{
			Currency:        cfg.Currency,
			AppHost:         cfg.AppHost,
			MinChargeAmount: cfg.MinChargeAmount,
			MaxQuantity:     cfg.MaxTicketsPerOrder,
			Fees:            fees,
			Timeout:         cfg.UpstreamTimeout,
		}, logger),
		Verify: services.NewVerifyService(store, gateway, notifier, services.VerifyConfig{
			Timeout:       cfg.UpstreamTimeout,
			NotifyTimeout: cfg.UpstreamTimeout,
		}, logger),
		Withdrawals: services.NewWithdrawalService(store, notifier, activity, cfg.UpstreamTimeout, logger),
		FeeConfig:   services.NewFeeConfigService(store, fees, activity, cfg.UpstreamTimeout, logger),
		Categories:  services.NewCategoryService(store, activity, cfg.UpstreamTimeout, logger),
		Redis:       lib.GetRedisClient(),
	}, nil
}
