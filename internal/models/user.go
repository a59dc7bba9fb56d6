package models

import "time"

type Role string

const (
	Admin             Role = "admin"
	ChefTroupe        Role = "chef_troupe"
	BrancheEclaireurs Role = "branche_eclaireurs"
)

type User struct {
	ID                  int64     `db:"id"`
	Email               string    `db:"email"`
	Name                string    `db:"name"`
	Role                Role      `db:"role"`
	PasswordHash        string    `db:"password_hash"`
	TroupeID            *int64    `db:"troupe_id"` // обязателен для chef_troupe
	IsActive            bool      `db:"is_active"`
	ForcePasswordChange bool      `db:"force_password_change"`
	CreatedAt           time.Time `db:"created_at"`
}

// DistrictGrant — единственный источник доступа для branche_eclaireurs:
// нет записи по району — заявки района полностью закрыты.
type DistrictGrant struct {
	UserID     int64 `db:"user_id"`
	DistrictID int64 `db:"district_id"`
}
