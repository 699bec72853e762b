package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zhouzirui/idol-oracle/backend/internal/analysis/intent"
	"github.com/zhouzirui/idol-oracle/backend/internal/config"
	"github.com/zhouzirui/idol-oracle/backend/internal/handler"
	"github.com/zhouzirui/idol-oracle/backend/internal/model/persona"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/conversation"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/llm"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootstrap, _ := zap.NewProduction()
		bootstrap.Fatal("failed to load configuration", zap.Error(err))
	}

	logger := newLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if envErr != nil {
		logger.Info("no .env file loaded, continuing with system environment variables only", zap.Error(envErr))
	}

	classifier := intent.Default()
	if path := cfg.Conversation.KeywordsFile; path != "" {
		tables, err := intent.LoadTables(path)
		if err != nil {
			logger.Fatal("failed to load keyword tables", zap.String("path", path), zap.Error(err))
		}
		classifier = intent.New(tables)
		logger.Info("keyword tables loaded", zap.String("path", path))
	}

	completer, err := llm.New(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Fatal("failed to initialize llm provider, 请检查模型相关环境变量",
			zap.String("provider", cfg.LLM.Provider), zap.Error(err))
	}
	logger.Info("llm provider initialized", zap.String("provider", cfg.LLM.Provider))

	store := session.NewStore(logger)
	engine := conversation.NewEngine(store, completer, conversation.Options{
		HistoryLimit: cfg.Conversation.HistoryLimit,
		Classifier:   classifier,
	}, logger)

	idols := persona.NewMemoryStore(persona.Seed())
	router := handler.NewRouter(engine, idols, cfg.Server.AllowedOrigins, logger)

	startServer(ctx, cfg.Server, router, logger)
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(lvl)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		return zap.NewExample()
	}
	return logger
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("idol oracle backend listening", zap.String("addr", addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
