package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Spok95/scout-gallery/internal/api"
	"github.com/Spok95/scout-gallery/internal/app"
	"github.com/Spok95/scout-gallery/internal/auth"
	"github.com/Spok95/scout-gallery/internal/config"
	"github.com/Spok95/scout-gallery/internal/db"
	"github.com/Spok95/scout-gallery/internal/jobs"
	"github.com/Spok95/scout-gallery/internal/logging"
	"github.com/Spok95/scout-gallery/internal/observability"
	"github.com/Spok95/scout-gallery/internal/service"
	"github.com/Spok95/scout-gallery/internal/storage"
)

const tokenTTL = 12 * time.Hour

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Конфигурация: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Логгер: %v", err)
	}
	defer lg.Closer()

	closeSentry, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, "scout-gallery")
	if err != nil {
		lg.Sugar.Warnw("sentry не инициализирован", "err", err)
	}
	defer closeSentry()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		lg.Sugar.Fatalw("подключение к БД", "err", err)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database); err != nil {
		lg.Sugar.Fatalw("миграция не удалась", "err", err)
	}

	blacklist, err := auth.NewRedisBlacklist(cfg.RedisAddr)
	if err != nil {
		lg.Sugar.Fatalw("redis недоступен", "err", err)
	}

	disk, err := storage.NewDisk(cfg.StorageDir)
	if err != nil {
		lg.Sugar.Fatalw("хранилище файлов", "err", err)
	}

	svc := service.NewSubmissions(database, disk, lg.Base)
	jwtMgr := auth.NewManager(cfg.JWTSecret, tokenTTL)
	handlers := api.NewHandlers(svc, database, disk, jwtMgr, blacklist, lg.Base, cfg.Location)

	app.StartHTTP(ctx, cfg.HTTPAddr, database, handlers.Router())
	lg.Sugar.Infow("сервер запущен", "addr", cfg.HTTPAddr)

	runner := jobs.New(ctx)
	runner.Every(30*time.Second, "pending_gauge", jobs.PendingGauge(database))
	runner.Every(30*time.Second, "db_ping", jobs.DBPing(database))
	runner.Every(15*time.Minute, "orphan_sweep", jobs.OrphanSweep(database, disk, lg.Base))

	<-ctx.Done()
	lg.Sugar.Infow("остановка по сигналу")
	time.Sleep(200 * time.Millisecond) // даём серверу закрыть соединения
}
