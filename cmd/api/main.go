package main

//go:generate swag init -g cmd/api/main.go -d ../../ -o ../../api/swagger

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "restaurant/api/swagger" // swagger docs
	"restaurant/internal/config"
	"restaurant/internal/database"
	"restaurant/internal/events"
	"restaurant/internal/handler"
	"restaurant/internal/logger"
	"restaurant/internal/middleware"
	"restaurant/internal/repository"
	"restaurant/internal/service"
	"restaurant/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
)

const sessionPurgeInterval = time.Hour

var dashboardRoles = []string{"admin", "manager", "cashier", "waiter", "kitchen"}

// @title           Restaurant Ordering API
// @version         1.0
// @description     Menu, checkout, rule-based tax, discount codes, orders and floor service for a single restaurant.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger.Init(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("Server stopped")
}

// run wires the application and blocks until a signal arrives or a component fails.
func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("Connected to database")

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if seed, err := database.LoadSeed(cfg.SeedFile); err != nil {
		log.Warn().Err(err).Str("file", cfg.SeedFile).Msg("Seed file not loaded, skipping seeding")
	} else if err := database.Seed(ctx, db, seed); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	// Optional infrastructure. Each one falls back to a no-op when unset or unreachable.
	var cache repository.Cache = repository.NopCache{}
	if cfg.Redis.Addr != "" {
		client, err := repository.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unavailable, caching disabled")
		} else {
			defer client.Close()
			cache = repository.NewRedisCache(client, cfg.Redis.TTL)
		}
	}

	var publisher events.OrderPublisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.OrdersTopic)
	}
	defer publisher.Close()

	var notifier events.StaffNotifier = events.NopNotifier{}
	if cfg.RabbitMQ.URL != "" {
		n, err := events.NewRabbitNotifier(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ unavailable, staff notifications disabled")
		} else {
			notifier = n
		}
	}
	defer notifier.Close()

	numbers, err := service.NewSnowflakeNumbers(cfg.NodeID)
	if err != nil {
		return fmt.Errorf("invalid node id %d: %w", cfg.NodeID, err)
	}
	pricingDefaults, err := service.PricingDefaults(cfg.Pricing)
	if err != nil {
		return fmt.Errorf("invalid pricing defaults: %w", err)
	}
	loc := cfg.Server.Location()

	wsHub := websocket.NewHub(cfg.Server.AllowedOrigins)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	tableRepo := repository.NewTableRepository(db)
	waiterCallRepo := repository.NewWaiterCallRepository(db)
	statisticsRepo := repository.NewStatisticsRepository(db)
	taxRuleRepo := repository.NewCachedTaxRuleRepository(repository.NewTaxRuleRepository(db), cache)
	settingRepo := repository.NewCachedSettingRepository(repository.NewSettingRepository(db), cache)

	middleware.InitAuth([]byte(cfg.Auth.JWTSecret), cfg.Server.Mode == gin.ReleaseMode, roleRepo)

	auditService := service.NewAuditService(auditRepo)
	settingsService := service.NewSettingsService(settingRepo, auditService, pricingDefaults)
	taxService := service.NewTaxService(taxRuleRepo, settingsService, auditService, loc)
	discountService := service.NewDiscountService(discountRepo, auditService)
	menuService := service.NewMenuService(categoryRepo, productRepo, auditService, txManager)
	customerService := service.NewCustomerService(customerRepo)
	tableService := service.NewTableService(tableRepo, orderRepo)
	orderService := service.NewOrderService(txManager, orderRepo, tableRepo, auditService, publisher, wsHub)
	waiterCallService := service.NewWaiterCallService(waiterCallRepo, tableRepo, notifier, wsHub)
	statisticsService := service.NewStatisticsService(statisticsRepo)
	roleService := service.NewRoleService(roleRepo, userRepo, txManager, middleware.ClearPermissionCache)
	userService := service.NewUserService(userRepo, roleRepo, service.AuthConfig{
		Secret:     []byte(cfg.Auth.JWTSecret),
		AccessTTL:  cfg.Auth.AccessTokenTTL,
		RefreshTTL: cfg.Auth.RefreshTokenTTL,
	})
	checkoutService := service.NewCheckoutService(service.CheckoutDeps{
		TxManager: txManager,
		Products:  productRepo,
		TaxRules:  taxRuleRepo,
		Discounts: discountRepo,
		Customers: customerRepo,
		Orders:    orderRepo,
		Tables:    tableRepo,
		Settings:  settingsService,
		Audit:     auditService,
		Publisher: publisher,
		Hub:       wsHub,
		Numbers:   numbers,
		Location:  loc,
	})

	// Public endpoints share one per-IP budget.
	publicLimiter := middleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	routes := []interface {
		RegisterRoutes(router *gin.RouterGroup)
	}{
		handler.NewUserHandler(userService),
		handler.NewRoleHandler(roleService),
		handler.NewAuditHandler(auditService),
		handler.NewStatisticsHandler(statisticsService, loc),
		handler.NewMenuHandler(menuService),
		handler.NewCheckoutHandler(checkoutService, publicLimiter),
		handler.NewOrderHandler(orderService),
		handler.NewTaxHandler(taxService),
		handler.NewDiscountHandler(discountService),
		handler.NewSettingsHandler(settingsService),
		handler.NewCustomerHandler(customerService),
		handler.NewTableHandler(tableService),
		handler.NewWaiterCallHandler(waiterCallService, publicLimiter),
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// Staff dashboards: kitchen and floor screens receive orders and waiter calls live.
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, []byte(cfg.Auth.JWTSecret), dashboardRoles)
	})

	for _, r := range routes {
		r.RegisterRoutes(router.Group(""))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return wsHub.Run(gctx)
	})
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(sessionPurgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				n, err := userService.PurgeExpiredSessions(gctx)
				if err != nil {
					log.Warn().Err(err).Msg("Failed to purge expired sessions")
					continue
				}
				if n > 0 {
					log.Info().Int64("count", n).Msg("Purged expired sessions")
				}
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
