package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"inventory/internal/config"
	"inventory/internal/handler"
	"inventory/internal/infra/db"
	infraRepo "inventory/internal/infra/repository"
	"inventory/internal/infra/sequence"
	"inventory/internal/server"
	"inventory/internal/usecase"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	log := config.NewLogger(cfg)

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("connect db")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.WithError(err).Fatal("migrate")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//REDIS_ADDRがあれば採番はredis
	var txOpts []infraRepo.TxOption
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()

		alloc := sequence.NewRedisAllocator(rdb)
		if err := alloc.Ping(ctx); err != nil {
			log.WithError(err).Fatal("connect redis")
		}
		//DBで払い出した番号より先から始める
		floors, err := infraRepo.NewSequenceGormRepository(gormDB).Snapshot(ctx)
		if err != nil {
			log.WithError(err).Fatal("read counters")
		}
		if err := alloc.Seed(ctx, floors); err != nil {
			log.WithError(err).Fatal("seed redis sequences")
		}
		txOpts = append(txOpts, infraRepo.WithSequenceAllocator(alloc))
		log.WithField("addr", cfg.RedisAddr).Info("using redis sequences")
	}

	//Repository（GORM実装）生成
	txm := infraRepo.NewTxManagerGorm(gormDB, txOpts...)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	purchaseRepo := infraRepo.NewPurchaseGormRepository(gormDB)
	saleRepo := infraRepo.NewSaleGormRepository(gormDB)
	returnRepo := infraRepo.NewReturnGormRepository(gormDB)
	alertRepo := infraRepo.NewAlertGormRepository(gormDB)
	movementRepo := infraRepo.NewMovementGormRepository(gormDB)

	//Usecase生成
	clock := usecase.SystemClock()
	policy := usecase.RetryPolicy{
		MaxAttempts:     cfg.TxMaxAttempts,
		InitialInterval: cfg.TxRetryInitialInterval,
	}

	catalogUC := usecase.NewCatalogUsecase(txm, clock, policy, log)
	purchaseUC := usecase.NewPurchaseUsecase(txm, purchaseRepo, clock, policy, log)
	saleUC := usecase.NewSaleUsecase(txm, saleRepo, clock, policy, log)
	returnUC := usecase.NewReturnUsecase(txm, returnRepo, clock, policy, log)
	movementUC := usecase.NewMovementUsecase(movementRepo)
	inventoryUC := usecase.NewInventoryUsecase(productRepo, movementUC)
	alertUC := usecase.NewAlertUsecase(alertRepo)

	//Handler生成
	e := server.New(cfg, log,
		handler.NewCatalogHandler(catalogUC),
		handler.NewPurchaseHandler(purchaseUC),
		handler.NewSaleHandler(saleUC),
		handler.NewReturnHandler(returnUC),
		handler.NewInventoryHandler(inventoryUC, movementUC),
		handler.NewAlertHandler(alertUC),
	)

	//Server起動
	if err := server.Start(ctx, e, cfg, log); err != nil {
		log.WithError(err).Fatal("server")
	}
	log.Info("server stopped")
}
