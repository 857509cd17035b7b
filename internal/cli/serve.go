package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"shop-service/internal/config"
	httpapi "shop-service/internal/controllers/http"
	"shop-service/internal/domain"
	"shop-service/internal/infra"
	"shop-service/internal/infra/database"
	"shop-service/internal/infra/mailer"
	"shop-service/internal/infra/payment"
	"shop-service/internal/infra/rabbitmq"
	"shop-service/internal/receipt"
	mysqlrepo "shop-service/internal/repository/mysql"
	"shop-service/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func newMailer(cfg config.SMTPConfig) infra.Mailer {
	if cfg.Host == "" {
		log.Println("SMTP host not configured, emails will only be logged")
		return mailer.LogMailer{}
	}
	return mailer.NewSMTPMailer(cfg)
}

func newPublisher(cfg config.RabbitMQConfig) (rabbitmq.PublisherInterface, func(), error) {
	if cfg.URL == "" {
		log.Println("RabbitMQ URL not configured, order events are dropped")
		return rabbitmq.NopPublisher{}, func() {}, nil
	}
	p, err := rabbitmq.NewPublisher(cfg.URL, cfg.Exchange)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init publisher: %w", err)
	}
	return p, p.Close, nil
}

func newRedis(cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: 2,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("db: connect: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	currencies, err := domain.NewCurrencies(cfg.Currency.Base, cfg.Currency.Rates)
	if err != nil {
		return fmt.Errorf("currency config: %w", err)
	}

	publisher, closePublisher, err := newPublisher(cfg.RabbitMQ)
	if err != nil {
		return err
	}
	defer closePublisher()

	orderRepo := mysqlrepo.NewOrderRepository(db)
	catalogRepo := mysqlrepo.NewCatalogRepository(db)
	userRepo := mysqlrepo.NewUserRepository(db)

	gateway := payment.NewStripeGateway(cfg.Stripe)
	notifier := services.NewNotificationService(newMailer(cfg.SMTP), cfg.SMTP.AdminEmail)
	renderer := receipt.NewRenderer(receipt.Merchant{
		Name:    cfg.Merchant.Name,
		Address: cfg.Merchant.Address,
		Email:   cfg.Merchant.Email,
		Phone:   cfg.Merchant.Phone,
	})

	var cache httpapi.CacheClient
	if rdb := newRedis(cfg.Redis); rdb != nil {
		defer rdb.Close()
		cache = rdb
	}

	handler := httpapi.NewHandler(httpapi.Services{
		Catalog:  services.NewCatalogService(catalogRepo),
		Orders:   services.NewOrderService(orderRepo),
		Checkout: services.NewCheckoutService(orderRepo, catalogRepo, gateway, notifier, publisher, currencies),
		Webhook:  services.NewWebhookService(orderRepo, gateway, notifier, publisher),
		Receipts: services.NewReceiptService(orderRepo, renderer),
		Auth:     services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL),
	}, cache).
		WithSecureCookie(cfg.Auth.SecureCookie).
		WithHealthCheck(func(ctx context.Context) error { return database.Ping(ctx, db) })

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handler.RegisterRoutes(r)

	log.Printf("Starting shop service on %s", cfg.Server.Addr)
	if err := r.Run(cfg.Server.Addr); err != nil {
		return fmt.Errorf("server run: %w", err)
	}
	return nil
}
