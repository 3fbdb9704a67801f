package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tomato-api/account"
	"tomato-api/auth"
	"tomato-api/cache"
	"tomato-api/catalog"
	"tomato-api/config"
	"tomato-api/handlers"
	"tomato-api/logger"
	"tomato-api/middleware"
	"tomato-api/notify"
	"tomato-api/restaurant"
	"tomato-api/routes"
	"tomato-api/store"
	"tomato-api/store/mongostore"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(logger.Config{
		IsDevelopment: cfg.IsDevelopment(),
		Encoding:      cfg.LogEncoding,
		Level:         cfg.LogLevel,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := config.OpenDB(cfg)
	if err != nil {
		return err
	}
	restaurants := store.NewRestaurantStore(db)
	users := store.NewUserStore(db)

	// Menu storage: arena tables next to the rest, or one document per menu in MongoDB
	var menus catalog.Store = store.NewMenuStore(db)
	if cfg.MenuStore == "mongo" {
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		ms := mongostore.NewMenuStore(client.Database(cfg.MongoDatabase))
		if err := ms.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("mongo indexes: %w", err)
		}
		menus = ms
	}

	opts := []catalog.Option{}
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cache.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
		opts = append(opts, catalog.WithCache(cache.NewRedisMenuCache(rdb, cfg.MenuCacheTTL)))
	}
	engine := catalog.NewEngine(menus, restaurants, zl, opts...)

	// Mail goes through a bounded queue so requests never wait on the transport
	var mailer notify.Mailer = notify.NewLogMailer(zl)
	if cfg.MailTransport == "amqp" {
		am, err := notify.NewAMQPMailer(cfg.RabbitURL, cfg.MailExchange, cfg.MailRoutingKey)
		if err != nil {
			return err
		}
		defer func() { _ = am.Close() }()
		mailer = am
	}
	dispatcher := notify.NewDispatcher(mailer, zl, cfg.MailQueueSize, cfg.MailWorkers)
	templates := notify.Templates{From: cfg.MailFrom, PublicURL: cfg.PublicURL}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	accounts := account.NewService(users, auth.NewHasher(cfg.BcryptCost), tokens, dispatcher, templates, zl)
	restaurantSvc := restaurant.NewService(restaurants, engine, dispatcher, templates, zl)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(zl), middleware.CORS(cfg.CORSOrigins))
	routes.SetupRoutes(r, routes.Handlers{
		Auth:       handlers.NewAuthHandler(accounts, zl),
		Restaurant: handlers.NewRestaurantHandler(restaurantSvc, zl),
		Catalog:    handlers.NewCatalogHandler(engine, zl),
	}, tokens)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		zl.Info("server running", zap.String("addr", "http://localhost:"+cfg.Port), zap.String("menu_store", cfg.MenuStore))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Warn("http shutdown", zap.Error(err))
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		zl.Warn("mail queue not drained", zap.Error(err))
	}
	return nil
}
