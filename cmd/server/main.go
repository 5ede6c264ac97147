package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Helm1Rahmad1/go-thrift-market/internal/cache"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/cart"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/checkout"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/config"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/events"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/httpapi"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/inventory"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/offers"
	"github.com/Helm1Rahmad1/go-thrift-market/internal/orders"
	mongostore "github.com/Helm1Rahmad1/go-thrift-market/internal/store/mongo"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.ServiceName).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = db.Client().Disconnect(disconnectCtx)
	}()

	st := mongostore.NewStore(db)
	if err := st.CreateIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}
	log.Info().Str("uri", cfg.MongoURI).Msg("connected to mongodb")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")

	var publisher events.Publisher = events.NopPublisher{}
	var kafkaPub *events.KafkaPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.ServiceName, 1024, log)
		kafkaPub.Start(ctx)
		publisher = kafkaPub
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("kafka publisher started")
	} else {
		log.Warn().Msg("no kafka brokers configured, events disabled")
	}

	cartCache := cache.NewRedisCache(redisClient)
	idemIndex := cache.NewIdempotencyIndex(redisClient)

	ledger := inventory.NewLedger(st, log)
	cartSvc := cart.NewService(st, cartCache, log)

	router := httpapi.NewRouter(httpapi.Handlers{
		Cart:     httpapi.NewCartHandler(cartSvc),
		Checkout: httpapi.NewCheckoutHandler(checkout.NewOrchestrator(st, ledger, cartSvc, st, idemIndex, publisher, log)),
		Offers:   httpapi.NewOffersHandler(offers.NewService(st, st, ledger, publisher, log)),
		Orders:   httpapi.NewOrdersHandler(orders.NewService(st, log)),
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      otelhttp.NewHandler(router, "http.server"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if kafkaPub != nil {
		kafkaPub.WaitClosed()
	}
	log.Info().Msg("stopped")
}
