package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/glatasks/backend/api/handler"
	"github.com/glatasks/backend/internal/config"
	"github.com/glatasks/backend/internal/infrastructure/keystore"
	"github.com/glatasks/backend/internal/infrastructure/monitor"
	pgInfra "github.com/glatasks/backend/internal/infrastructure/postgres"
	redisInfra "github.com/glatasks/backend/internal/infrastructure/redis"
	"github.com/glatasks/backend/internal/middleware"
	"github.com/glatasks/backend/internal/router"
	"github.com/glatasks/backend/internal/services"
	"github.com/glatasks/backend/internal/services/lifecycle"
	"github.com/glatasks/backend/pkg/httpcontext"
	"github.com/glatasks/backend/pkg/logger"
	"github.com/glatasks/backend/pkg/obfuscate"
	"github.com/glatasks/backend/repository/postgres"
	redisRepo "github.com/glatasks/backend/repository/redis"
	authUC "github.com/glatasks/backend/usecase/auth"
	listsUC "github.com/glatasks/backend/usecase/lists"
	tasksUC "github.com/glatasks/backend/usecase/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	loc, err := cfg.Location()
	if err != nil {
		zapLogger.Fatal("invalid timezone", zap.String("timezone", cfg.Timezone), zap.Error(err))
	}

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	keys, err := keystore.Open(cfg.Keystore.Path)
	if err != nil {
		zapLogger.Fatal("failed to open keystore", zap.Error(err))
	}
	manager.Register("keystore", func(ctx context.Context) error {
		return keys.Close()
	})

	cipherKey, err := keys.GetOrCreate("cipher_key", obfuscate.KeySize)
	if err != nil {
		zapLogger.Fatal("cipher key unavailable", zap.Error(err))
	}
	cipherIV, err := keys.GetOrCreate("cipher_iv", obfuscate.KeySize)
	if err != nil {
		zapLogger.Fatal("cipher iv unavailable", zap.Error(err))
	}
	codec, err := obfuscate.New(cipherKey, cipherIV)
	if err != nil {
		zapLogger.Fatal("cipher setup failed", zap.Error(err))
	}

	jwtSecret := []byte(cfg.Auth.JWTSecret)
	if len(jwtSecret) == 0 {
		jwtSecret, err = keys.GetOrCreate("jwt_secret", 32)
		if err != nil {
			zapLogger.Fatal("jwt secret unavailable", zap.Error(err))
		}
	}
	internalKey := []byte(cfg.Auth.InternalKey)
	if len(internalKey) == 0 {
		zapLogger.Warn("internal api key not set, service-to-service endpoints disabled")
	}

	mon := monitor.New(pool, redisClient, keys, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	listRepo := postgres.NewListRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Auth.SessionTTL)
	scoper := postgres.NewScopeManager(pool, zapLogger)

	authUseCase := authUC.New(userRepo, sessionRepo, jwtSecret, cfg.Auth.SessionTTL, loc, zapLogger)
	listsUseCase := listsUC.New(listRepo, taskRepo, loc, zapLogger)
	tasksUseCase := tasksUC.New(listRepo, taskRepo, loc, zapLogger)

	if cfg.Janitor.Enabled {
		janitor := services.NewJanitor(taskRepo, scoper, loc, services.JanitorConfig{
			Schedule:  cfg.Janitor.Schedule,
			Retention: cfg.Janitor.Retention,
		}, zapLogger)
		janitor.Start()
		manager.Register("janitor", func(ctx context.Context) error {
			janitor.Stop(ctx)
			return nil
		})
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, scoper, zapLogger, cfg.Auth.CookieTTL),
		List:    apiHandler.NewListHandler(listsUseCase, codec, ctxAdapter, scoper, zapLogger),
		Task:    apiHandler.NewTaskHandler(tasksUseCase, codec, ctxAdapter, scoper, zapLogger),
		Share:   apiHandler.NewShareHandler(listsUseCase, tasksUseCase, ctxAdapter, scoper, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
		Sandbox: apiHandler.NewSandboxHandler(zapLogger),
	}

	authMiddleware := middleware.Auth(authUseCase, internalKey, zapLogger)
	internalMiddleware := middleware.InternalOnly(internalKey)
	r := router.New(handlers, authMiddleware, internalMiddleware)
	handler := middleware.Recover(zapLogger)(r.Handler)

	server := &fasthttp.Server{
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
