package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/aq2208/storefront-api/configs"
	"github.com/aq2208/storefront-api/internal/adapter/cache"
	httpadapter "github.com/aq2208/storefront-api/internal/adapter/http"
	"github.com/aq2208/storefront-api/internal/adapter/http/middleware"
	"github.com/aq2208/storefront-api/internal/adapter/kafka"
	"github.com/aq2208/storefront-api/internal/adapter/payment"
	"github.com/aq2208/storefront-api/internal/adapter/queue"
	"github.com/aq2208/storefront-api/internal/adapter/repo"
	"github.com/aq2208/storefront-api/internal/logging"
	"github.com/aq2208/storefront-api/internal/security"
	"github.com/aq2208/storefront-api/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	log := logging.Init(cfg.App.Name, cfg.App.LogFile)

	// database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, nil, err
	}

	log.Info("storefront-api: starting up")

	// redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, err
	}

	// rabbitmq
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}

	// infra
	store := repo.NewStore(db)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	statusCache := cache.NewRedisStatusCache(rdb)
	producer, err := queue.NewRabbitProducer(ch)
	if err != nil {
		return nil, nil, err
	}
	signer := security.NewPaymentSigner(cfg.Gateway.KeySecret)
	gateway := payment.NewRazorpayGateway(cfg.Gateway.KeyID, cfg.Gateway.KeySecret)

	// use cases
	placeUC := usecase.NewPlaceOrder(store, store, store, store, gateway, idem,
		producer, statusCache, cfg.Gateway.Currency, logging.New("place_order"))
	confirmUC := usecase.NewConfirmPayment(store, signer, producer, statusCache,
		logging.New("confirm_payment"))
	cancelUC := usecase.NewCancelOrder(store, producer, statusCache,
		cfg.Orders.CancelWindow, logging.New("cancel_order"))
	queriesUC := usecase.NewOrderQueries(store, store, producer, statusCache,
		logging.New("order_queries"))
	cartUC := usecase.NewCartOps(store, store)
	stockUC := usecase.NewStockOps(store, store)

	// consumers
	setupQueue(ch)
	kafkaStop, err := setupKafkaListener(cfg, store, statusCache)
	if err != nil {
		return nil, nil, err
	}

	// handlers + router + middleware
	h := httpadapter.Handlers{
		Orders:   httpadapter.NewOrderHandler(placeUC, cancelUC, queriesUC),
		Payments: httpadapter.NewPaymentHandler(placeUC, confirmUC, cfg.Gateway.KeyID),
		Cart:     httpadapter.NewCartHandler(cartUC),
		Stock:    httpadapter.NewStockHandler(stockUC),
		Products: httpadapter.NewProductHandler(store),
	}
	authn := middleware.NewAuthn(cfg.Security.JWTSecret, cfg.Security.Issuer, cfg.Security.Audience)
	router := httpadapter.NewRouter(h, authn, logging.New("http"))

	cleanup := func() {
		kafkaStop()
		_ = ch.Close()
		_ = conn.Close()
		_ = rdb.Close()
		_ = db.Close()
	}

	return &App{Router: router}, cleanup, nil
}

func setupQueue(ch *amqp091.Channel) {
	notify := queue.NewNotifyHandler(queue.LogNotifier{Log: logging.New("notify")})

	router := queue.NewRouter(ch, logging.New("rmq"), queue.WithPrefetch(50))
	router.Register(queue.NotifyQueue, queue.JSONHandler[usecase.OrderEventMsg]{HandleFunc: notify.HandleEvent})

	if err := router.Start(); err != nil {
		panic(err)
	}
}

func setupKafkaListener(cfg configs.Config, store *repo.Store, statusCache usecase.StatusCache) (func(), error) {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return nil, err
	}

	h := kafka.NewFulfillmentHandler(store, statusCache, logging.New("fulfillment"))
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.FulfillmentTopic}, h.Handle, logging.New("kafka"))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			logging.New("kafka").Error("consumer stopped", "err", err)
		}
	}()

	stop := func() {
		cancel()
		_ = grp.Close()
	}
	return stop, nil
}
