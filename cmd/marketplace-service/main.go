// cmd/marketplace-service/main.go
package main

import (
	"context"
	"os"
	"strings"

	"bazaar/internal/pkg/bootstrap"
	"bazaar/internal/pkg/logger"
	"bazaar/internal/pkg/mq"
	"bazaar/internal/pkg/redis"
	cartapp "bazaar/internal/service/cart/application"
	cartinfra "bazaar/internal/service/cart/infrastructure"
	cartifaces "bazaar/internal/service/cart/interfaces"
	cataloginfra "bazaar/internal/service/catalog/infrastructure"
	orderapp "bazaar/internal/service/order/application"
	orderdomain "bazaar/internal/service/order/domain"
	"bazaar/internal/service/order/domain/port"
	orderinfra "bazaar/internal/service/order/infrastructure"
	"bazaar/internal/service/order/infrastructure/adapter"
	orderifaces "bazaar/internal/service/order/interfaces"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	cfg, err := bootstrap.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Service.Name)
	log := logger.Logger()

	// --- 基础设施 ---
	db, err := gorm.Open(mysql.Open(cfg.Infra.MysqlDSN), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mysql")
	}
	if err := db.AutoMigrate(
		&cataloginfra.UserModel{},
		&cataloginfra.SellerModel{},
		&cataloginfra.ProductModel{},
		&cataloginfra.VariantValueModel{},
		&cataloginfra.SellerOfferModel{},
		&cartinfra.CartModel{},
		&cartinfra.CartItemModel{},
		&orderinfra.OrderModel{},
		&orderinfra.OrderItemModel{},
		&orderinfra.PaymentLogModel{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate schema")
	}

	// Kafka 与 Redis 都是可选依赖：未配置时订单流程照常工作，
	// 只是少了事件投递和回调去重。
	var kafkaWriter *kafka.Writer
	var producer orderdomain.OrderEventProducer
	if cfg.Infra.KafkaBrokers != "" {
		kafkaWriter = mq.NewKafkaWriter(strings.Split(cfg.Infra.KafkaBrokers, ","), cfg.App.OrderEventsTopic)
		producer = orderinfra.NewOrderEventProducerAdapter(kafkaWriter)
	} else {
		log.Warn().Msg("kafka brokers not configured, order events disabled")
	}

	var redisClient *redis.Client
	var guard *adapter.RedisPaymentGuardAdapter
	if cfg.Infra.RedisAddrs != "" {
		redisClient, err = redis.NewClient(cfg.Infra.RedisAddrs)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		guard = adapter.NewRedisPaymentGuardAdapter(redisClient)
	} else {
		log.Warn().Msg("redis not configured, payment callback dedup disabled")
	}

	// --- 仓储与适配器 ---
	catalogRepo := cataloginfra.NewGormCatalogRepository(db)
	cartRepo := cartinfra.NewGormCartRepository(db)
	orderRepo := orderinfra.NewGormOrderRepository(db)
	checkoutStore := orderinfra.NewGormCheckoutStore(db)
	cartProvider := adapter.NewCartRepositoryAdapter(cartRepo)

	pricing := orderdomain.PricingConfig{
		FreeShippingThreshold: cfg.App.FreeShippingThreshold,
		ShippingFlatFee:       cfg.App.ShippingFlatFee,
		TaxPercent:            cfg.App.TaxPercent,
	}

	// --- 应用服务 ---
	tracer := otel.Tracer(cfg.Service.Name)
	orderService := orderapp.NewOrderApplicationService(
		checkoutStore, orderRepo, catalogRepo, cartProvider, catalogRepo,
		producer, paymentGuard(guard), pricing, tracer,
	)
	cartService := cartapp.NewCartApplicationService(cartRepo, catalogRepo, tracer)

	orderHandler := orderifaces.NewOrderHandler(orderService)
	cartHandler := cartifaces.NewCartHandler(cartService)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: cfg.Service.Name,
		Port:        cfg.Service.Port,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			orderHandler.RegisterRoutes(appCtx.Mux)
			cartHandler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			if kafkaWriter != nil {
				if err := kafkaWriter.Close(); err != nil {
					log.Error().Err(err).Msg("error closing kafka writer")
				}
			}
			if redisClient != nil {
				if err := redisClient.Close(); err != nil {
					log.Error().Err(err).Msg("error closing redis client")
				}
			}
		},
	})
}

// paymentGuard 避免把一个带类型的 nil 指针塞进接口值。
func paymentGuard(g *adapter.RedisPaymentGuardAdapter) port.PaymentCallbackGuard {
	if g == nil {
		return nil
	}
	return g
}
