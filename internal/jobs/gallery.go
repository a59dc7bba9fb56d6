package jobs

import (
	"context"
	"database/sql"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/scout-gallery/internal/db"
	"github.com/Spok95/scout-gallery/internal/metrics"
	"github.com/Spok95/scout-gallery/internal/models"
	"github.com/Spok95/scout-gallery/internal/storage"
)

// PendingGauge держит метрику «ожидают модерации» в актуальном виде.
func PendingGauge(database *sql.DB) Job {
	return func(ctx context.Context) error {
		n, err := db.CountSetsByStatus(ctx, database, models.StatusPending)
		if err != nil {
			return err
		}
		metrics.PendingSets.Set(float64(n))
		return nil
	}
}

// OrphanSweep удаляет файлы, на которые не ссылается ни один снимок:
// остатки прерванных загрузок. Свежие файлы не трогаем — их заявка
// может ещё не закоммититься.
func OrphanSweep(database *sql.DB, disk *storage.Disk, log *zap.Logger) Job {
	const minAge = time.Hour
	return func(ctx context.Context) error {
		locators, err := disk.List(ctx)
		if err != nil {
			return err
		}
		referenced, err := db.ListPicturePaths(ctx, database)
		if err != nil {
			return err
		}
		for _, loc := range locators {
			if _, ok := referenced[loc]; ok {
				continue
			}
			info, err := os.Stat(disk.Path(loc))
			if err != nil || time.Since(info.ModTime()) < minAge {
				continue
			}
			if err := disk.Delete(ctx, loc); err != nil {
				log.Warn("sweep: не удалось удалить файл", zap.String("locator", loc), zap.Error(err))
				continue
			}
			log.Info("sweep: удалён осиротевший файл", zap.String("locator", loc))
		}
		return nil
	}
}

// DBPing меряет доступность БД независимо от входящего трафика.
func DBPing(database *sql.DB) Job {
	return func(ctx context.Context) error {
		pctx, cancel := context.WithTimeout(ctx, 800*time.Millisecond)
		defer cancel()
		t0 := time.Now()
		if err := database.PingContext(pctx); err != nil {
			return err
		}
		metrics.ObserveDBPing(time.Since(t0))
		return nil
	}
}
