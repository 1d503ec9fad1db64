package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/nahuarce12/ecommerce/configs"
	"github.com/nahuarce12/ecommerce/internal/adapter/cache"
	httpadapter "github.com/nahuarce12/ecommerce/internal/adapter/http"
	"github.com/nahuarce12/ecommerce/internal/adapter/http/middleware"
	"github.com/nahuarce12/ecommerce/internal/adapter/kafka"
	"github.com/nahuarce12/ecommerce/internal/adapter/mercadopago"
	"github.com/nahuarce12/ecommerce/internal/adapter/queue"
	"github.com/nahuarce12/ecommerce/internal/adapter/repo"
	domain "github.com/nahuarce12/ecommerce/internal/entity"
	"github.com/nahuarce12/ecommerce/internal/logging"
	"github.com/nahuarce12/ecommerce/internal/security"
	"github.com/nahuarce12/ecommerce/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	log := logging.Init(cfg.App.Name, "./logs/app.log")
	log.Info("starting up", "addr", cfg.App.HTTPAddr)

	// init database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = db.PingContext(ctx)
	cancel()
	if err != nil {
		return nil, nil, err
	}

	// init redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, err
	}

	// init rabbitmq
	conn, err := amqp.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}
	producer, err := queue.NewRabbitProducer(ch, cfg.Rabbit.Exchange)
	if err != nil {
		return nil, nil, err
	}

	// infra
	orderRepo := repo.NewMySQLOrderRepo(db)
	productRepo := repo.NewMySQLProductRepo(db)
	profileRepo := repo.NewMySQLProfileRepo(db)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	orderCache := cache.NewRedisOrderCache(rdb, cfg.Cache.TTL)
	gateway := mercadopago.NewClient(cfg.MercadoPago.APIBaseURL, cfg.MercadoPago.AccessToken, cfg.MercadoPago.Timeout)

	rates := domain.ShippingRates{
		HomeCity:         cfg.Shipping.HomeCity,
		HomeProvince:     cfg.Shipping.HomeProvince,
		HomeProvinceCost: decimal.NewFromFloat(cfg.Shipping.HomeProvinceCost),
		NationalCost:     decimal.NewFromFloat(cfg.Shipping.NationalCost),
	}

	// usecases
	settler := usecase.NewPaymentSettler(orderRepo, productRepo, orderCache, producer)
	createUC := usecase.NewCreateOrder(orderRepo, productRepo, profileRepo, idem, orderCache, producer, rates)
	validateUC := usecase.NewValidateStock(productRepo)
	getUC := usecase.NewGetOrder(orderRepo, orderCache)
	prefUC := usecase.NewIssuePreference(orderRepo, profileRepo, gateway,
		cfg.App.BaseURL, cfg.MercadoPago.Currency, cfg.App.Name, cfg.MercadoPago.PreferenceTTL)
	webhookUC := usecase.NewProcessNotification(orderRepo, gateway, idem, settler)
	confirmUC := usecase.NewConfirmPayment(orderRepo, settler)
	shippingUC := usecase.NewUpdateShipping(orderRepo, orderCache)
	expireUC := usecase.NewExpireOrders(orderRepo, cfg.Orders.PendingTTL)

	// register queue-handler
	if err := setupQueue(ch); err != nil {
		return nil, nil, err
	}

	// register kafka-listener
	kafkaCancel, err := setupKafkaListener(cfg, shippingUC)
	if err != nil {
		return nil, nil, err
	}

	// background sweep of stale pending_payment orders
	sweepCancel := startSweeper(expireUC, cfg.Orders.SweepInterval)

	// handlers + router + middleware
	oh := httpadapter.NewOrderHandler(createUC, validateUC, getUC)
	ph := httpadapter.NewPaymentHandler(prefUC, webhookUC, security.NewWebhookVerifier(cfg.MercadoPago.WebhookSecret))
	ah := httpadapter.NewAdminHandler(confirmUC, shippingUC, expireUC, getUC)
	th := httpadapter.NewTokenHandler(cfg)
	authz := middleware.NewAuthz(cfg)
	router := httpadapter.NewRouter(oh, ph, ah, th, authz)

	cleanup := func() {
		sweepCancel()
		kafkaCancel()
		_ = ch.Close()
		_ = conn.Close()
		_ = rdb.Close()
		_ = db.Close()
	}

	return &App{Router: router}, cleanup, nil
}

func setupQueue(ch *amqp.Channel) error {
	h := queue.NewOrderPaidHandler(queue.LogNotifier{})

	router := queue.NewRouter(ch, queue.WithPrefetch(50))
	router.Register(queue.QueueOrderPaid, queue.JSONHandler[usecase.OrderPaidMsg]{HandleFunc: h.HandlePaid})

	return router.Start()
}

func setupKafkaListener(cfg configs.Config, shippingUC *usecase.UpdateShipping) (context.CancelFunc, error) {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return nil, err
	}

	h := kafka.NewFulfillmentEventHandler(shippingUC)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.FulfillmentTopic}, h.Handle)
	consumer.Logger = logging.New("kafka")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			logging.New("kafka").Error("consumer stopped", "err", err)
		}
		_ = grp.Close()
	}()
	return cancel, nil
}

func startSweeper(expireUC *usecase.ExpireOrders, interval time.Duration) context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	log := logging.New("sweeper")
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				runCtx, runCancel := context.WithTimeout(logging.WithCtx(ctx, log), 30*time.Second)
				if _, err := expireUC.Execute(runCtx); err != nil {
					log.Error("expire sweep failed", "err", err)
				}
				runCancel()
			}
		}
	}()
	return cancel
}
