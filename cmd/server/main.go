package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/yacht-charter/internal/booking"
	"github.com/iliyamo/yacht-charter/internal/cart"
	"github.com/iliyamo/yacht-charter/internal/config"
	"github.com/iliyamo/yacht-charter/internal/database"
	"github.com/iliyamo/yacht-charter/internal/handler"
	"github.com/iliyamo/yacht-charter/internal/logger"
	"github.com/iliyamo/yacht-charter/internal/middleware"
	"github.com/iliyamo/yacht-charter/internal/notification"
	"github.com/iliyamo/yacht-charter/internal/pricing"
	"github.com/iliyamo/yacht-charter/internal/queue"
	"github.com/iliyamo/yacht-charter/internal/repository"
	"github.com/iliyamo/yacht-charter/internal/router"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := config.Load()
	lg := logger.New(cfg.Env, cfg.LogLevel)
	slog.SetDefault(lg)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		lg.Warn("redis unavailable: in-memory carts, no rate limiting, no response cache")
	} else {
		defer rdb.Close()
	}

	yachts := repository.NewYachtRepo(db)
	services := repository.NewServiceRepo(db)
	promos := repository.NewPromotionRepo(db)
	bookings := repository.NewBookingRepo(db)
	serviceCart := repository.NewServiceCartRepo(db)
	settings := repository.NewSettingsRepo(db)
	roles := repository.NewRoleRepo(db)

	publisher := queue.NewPublisher(cfg.RabbitURL, cfg.ChangesExchange, lg.With(slog.String("component", "publisher")))
	calc := pricing.NewCalculator(lg.With(slog.String("component", "pricing")))

	var store booking.Store = bookings
	if cfg.BookingWrites == config.BookingWritesCompensating {
		store = booking.NewCompensating(bookings, lg)
	}
	bookingSvc := booking.NewService(yachts, promos, store, publisher, calc, lg.With(slog.String("component", "booking")))

	var lists cart.Stores = cart.NewMemoryStores()
	if rdb != nil {
		lists = cart.NewRedisStores(rdb, "cart", cfg.CartTTL)
	}
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, lg)
	limit := middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb, lg)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, middleware.HeaderSessionID},
		ExposeHeaders: []string{middleware.HeaderSessionID},
	}))
	e.Use(echomw.ContextTimeoutWithConfig(echomw.ContextTimeoutConfig{Timeout: cfg.RequestTimeout}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				lg.LogAttrs(c.Request().Context(), slog.LevelError, "request", attrs...)
				return nil
			}
			lg.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Language())

	router.RegisterRoutes(e, db)
	router.RegisterPublic(e, handler.NewCatalogHandler(yachts, services, promos, settings, calc, lg), cache)
	router.RegisterBooking(e, handler.NewBookingHandler(bookingSvc, settings, cfg.Currency, cfg.RequestTimeout, lg), limit)
	router.RegisterCart(e, &handler.CartHandler{
		Lists:       lists,
		Yachts:      yachts,
		Services:    services,
		ServiceCart: serviceCart,
		Settings:    settings,
		Changes:     publisher,
		Calc:        calc,
		Currency:    cfg.Currency,
		Log:         lg,
	}, middleware.Session(cfg.CartTTL), limit)
	router.RegisterAdmin(e, &handler.AdminHandler{
		Bookings:   bookings,
		Yachts:     yachts,
		Settings:   settings,
		Changes:    publisher,
		Calc:       calc,
		VATPercent: cfg.VATPercent,
		Currency:   cfg.Currency,
		Log:        lg.With(slog.String("component", "admin")),
	}, cfg.JWTSecret, roles)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if publisher.Enabled() {
		notifier, err := notification.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, cfg.Currency, lg.With(slog.String("component", "telegram")))
		if err != nil {
			log.Fatalf("telegram: %v", err)
		}
		consumer := &queue.Consumer{
			URL:      cfg.RabbitURL,
			Exchange: cfg.ChangesExchange,
			Queue:    cfg.ChangesQueue,
			Dispatch: &queue.Dispatcher{Cache: cache, Notifier: notifier, Log: lg},
			Log:      lg.With(slog.String("component", "consumer")),
		}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				lg.Error("change consumer stopped", slog.String("error", err.Error()))
			}
		}()
	} else {
		lg.Warn("RABBITMQ_URL not set: change feed and booking notifications disabled")
	}

	go func() {
		addr := ":" + cfg.Port
		lg.Info("listening", slog.String("addr", addr), slog.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error("shutdown", slog.String("error", err.Error()))
	}
	lg.Info("stopped")
}
