package main

import (
	"log"

	"battwheels/internal/cart"
	"battwheels/internal/config"
	"battwheels/internal/domain/model"
	"battwheels/internal/handler"
	"battwheels/internal/infra/db"
	infraRepo "battwheels/internal/infra/repository"
	"battwheels/internal/server"
	"battwheels/internal/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional outside dev
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("logger init:", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	gormDB, err := db.Connect()
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	if err := gormDB.AutoMigrate(
		&model.Product{},
		&model.CartRecord{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// repositories (GORM)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartStateRepo := infraRepo.NewCartStateGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	// cart pricing and coupon allow-list come from config
	pricing := cart.PricingConfig{
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		FlatShippingFee:       cfg.FlatShippingFee,
	}
	coupons := cart.CouponBook(cfg.CouponCodes)

	// usecases
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(cartStateRepo, productRepo, pricing, coupons)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, cartUC)

	// handlers
	handlers := server.Handlers{
		Products: handler.NewProductHandler(productUC),
		Cart:     handler.NewCartHandler(cartUC),
		Checkout: handler.NewCheckoutHandler(checkoutUC),
	}

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	if err := server.Start(addr, cfg, logger, handlers); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}
