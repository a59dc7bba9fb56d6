package models

import "time"

// DesignGroup объединяет снимки одной постройки из разных наборов.
// Живая группа всегда содержит минимум два снимка, primary — её участник.
type DesignGroup struct {
	ID               int64     `db:"id"`
	Name             *string   `db:"name"`
	PrimaryPictureID int64     `db:"primary_picture_id"`
	CategoryID       *int64    `db:"category_id"`
	CreatedBy        int64     `db:"created_by"`
	CreatedAt        time.Time `db:"created_at"`
}
