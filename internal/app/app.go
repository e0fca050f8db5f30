// Package app はアプリケーションの起動処理と依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/infectados/internal/auth"
	"github.com/hitoshi/infectados/internal/config"
	"github.com/hitoshi/infectados/internal/database"
	"github.com/hitoshi/infectados/internal/handler"
	"github.com/hitoshi/infectados/internal/infectado"
	"github.com/hitoshi/infectados/internal/logger"
	"github.com/hitoshi/infectados/internal/metrics"
	"github.com/hitoshi/infectados/internal/middleware"
	"github.com/hitoshi/infectados/internal/repository"
	"github.com/hitoshi/infectados/internal/usuario"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたレベルでロガーを再構成する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(fmt.Sprintf("http://localhost:%s/health", port))
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("mongo_uri", database.MaskURI(cfg.MongoURI)),
		slog.String("mongo_database", cfg.MongoDatabase),
	)

	switch cmd {
	case CommandIndexes:
		return runIndexes(cfg)
	default:
		return runServe(cfg)
	}
}

// stores はリポジトリが利用するコレクション。
type stores struct {
	infectados repository.Collection
	usuarios   repository.Collection
}

// server は組み立て済みのHTTPハンドラと停止処理を保持する。
type server struct {
	handler http.Handler
	limiter *middleware.RateLimiter
}

// Close はバックグラウンドのクリーンアップを停止する。
func (s *server) Close() {
	s.limiter.Stop()
}

// buildServer はコレクションからリポジトリ、サービス、ルーターまでを組み立てる。
func buildServer(cfg *config.Config, st stores, checker handler.HealthChecker, reg *prometheus.Registry) (*server, error) {
	collector := metrics.NewCollector(reg)

	// 1. リポジトリの初期化
	infectadoRepo := repository.NewMongoInfectadoRepo(st.infectados, collector)
	usuarioRepo := repository.NewMongoUsuarioRepo(st.usuarios, collector)

	// 2. トークン発行・パスワードハッシュの初期化
	issuer, err := auth.NewJWTIssuer(auth.TokenConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}
	hasher := usuario.NewBcryptHasher(cfg.BcryptCost)

	// 3. ドメインサービスの初期化
	infectadoService := infectado.NewService(infectadoRepo)
	usuarioService := usuario.NewService(usuarioRepo, hasher, issuer, collector)

	// 4. ルーターの構築（req/min -> req/sec の変換はNewRateLimiterConfigで行う）
	limiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitAuth))

	router := handler.NewRouter(&handler.RouterDeps{
		TokenValidator:    issuer,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       limiter,
		Logger:            slog.Default(),
		TrustProxyHeaders: cfg.TrustProxyHeaders,

		HTTPRecorder:   collector,
		MetricsHandler: metrics.Handler(reg),
		HealthChecker:  checker,

		InfectadoService: infectadoService,
		UsuarioService:   usuarioService,
	})

	return &server{handler: router, limiter: limiter}, nil
}

// runServe はAPIサーバーモードで起動する。
// MongoDBに接続してインデックスを作成し、全依存関係をワイヤリングしてHTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoTimeout)
	defer cancel()

	client, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoTimeout)
	if err != nil {
		return err
	}
	defer disconnect(client.Disconnect)

	checker := database.NewHealthChecker(client)
	if err := checker.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	db := client.Database(cfg.MongoDatabase)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	// 2. 依存関係のワイヤリング
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv, err := buildServer(cfg, stores{
		infectados: db.Collection(database.InfectadoCollection),
		usuarios:   db.Collection(database.UsuarioCollection),
	}, checker, reg)
	if err != nil {
		return err
	}
	defer srv.Close()

	// 3. HTTPサーバーの起動
	httpServer := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           srv.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", httpServer.Addr),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
	case <-stop:
	}

	slog.Info("shutting down API server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runIndexes はコレクションのインデックスを作成して終了する。
func runIndexes(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoTimeout)
	defer cancel()

	client, err := database.Connect(ctx, cfg.MongoURI, cfg.MongoTimeout)
	if err != nil {
		return err
	}
	defer disconnect(client.Disconnect)

	if err := database.EnsureIndexes(ctx, client.Database(cfg.MongoDatabase)); err != nil {
		return fmt.Errorf("index creation failed: %w", err)
	}

	slog.Info("indexes created successfully", slog.Int("count", len(database.IndexSpecs())))
	return nil
}

// disconnect はMongoDBクライアントを切断する。
func disconnect(fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		slog.Warn("failed to disconnect from mongodb", slog.String("error", err.Error()))
	}
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(url string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
