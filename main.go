package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"friendgraph/config"
	"friendgraph/database"
	"friendgraph/handlers"
	"friendgraph/logger"
	"friendgraph/metrics"
	"friendgraph/middleware"
	"friendgraph/services"
	"friendgraph/store"
	"friendgraph/utils"
	"friendgraph/websocket"
)

const superuserPasswordEnv = "FRIENDGRAPH_SUPERUSER_PASSWORD"

type stores struct {
	users    store.UserStore
	requests store.FriendRequestStore
	close    func()
}

func openStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("using in-memory store; data is lost on exit")
		mem := store.NewMemory()
		return &stores{users: mem, requests: mem, close: func() {}}, nil
	case "mysql":
		db, err := database.Connect(ctx, cfg.MysqlDSN, log)
		if err != nil {
			return nil, err
		}
		if err := database.CreateTables(ctx, db, log); err != nil {
			db.Close()
			return nil, err
		}
		return &stores{
			users:    store.NewMySQLUserStore(db),
			requests: store.NewMySQLFriendRequestStore(db),
			close:    func() { db.Close() },
		}, nil
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}

func main() {
	cfg := config.Load()
	appLogger := logger.New(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("open store failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer st.close()

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	accounts := services.NewAccountService(st.users, tokens, appLogger, cfg.SearchPageSize)

	if len(os.Args) > 1 {
		if err := runCommand(ctx, accounts, os.Args[1:]); err != nil {
			appLogger.Error("command failed", slog.String("command", os.Args[1]), slog.String("error", err.Error()))
			st.close()
			os.Exit(1)
		}
		return
	}

	metrics.Init()
	hub := websocket.NewHub(appLogger)
	go hub.Run(ctx)

	friends := services.NewFriendService(st.users, st.requests, hub, appLogger, cfg.FriendRequestLimit, cfg.FriendRequestWindow)
	h := handlers.New(accounts, friends, st.users, appLogger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.Recovery(appLogger))
	r.Use(middleware.RequestLogger(appLogger))
	r.Use(metrics.Middleware())
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	h.RegisterRoutes(r, middleware.AuthMiddleware(tokens, accounts))
	r.GET("/ws", hub.Handler(tokens, accounts))
	r.GET("/metrics", metrics.Handler())

	httpServer := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("server listening", slog.String("addr", cfg.ServerAddr), slog.String("store", cfg.StoreDriver))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server run failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	appLogger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("http shutdown failed", slog.String("error", err.Error()))
	}
}

// runCommand handles administrative subcommands.
func runCommand(ctx context.Context, accounts *services.AccountService, args []string) error {
	switch args[0] {
	case "createsuperuser":
		if len(args) != 3 {
			return fmt.Errorf("usage: friendgraph createsuperuser <email> <username> (password in %s)", superuserPasswordEnv)
		}
		password := os.Getenv(superuserPasswordEnv)
		if password == "" {
			return fmt.Errorf("%s is not set", superuserPasswordEnv)
		}
		u, err := accounts.CreateSuperuser(ctx, args[1], args[2], password)
		if err != nil {
			return err
		}
		fmt.Printf("Superuser %s created.\n", u.Username)
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
