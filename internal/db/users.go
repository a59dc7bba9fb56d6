package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Spok95/scout-gallery/internal/models"
)

func CreateUser(ctx context.Context, q Queryer, u models.User) (int64, error) {
	if u.Role == models.ChefTroupe && u.TroupeID == nil {
		return 0, fmt.Errorf("chef_troupe без отряда: %s", u.Email)
	}
	var id int64
	err := q.QueryRowContext(ctx, `
INSERT INTO users (email, name, role, password_hash, troupe_id, is_active, force_password_change)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`,
		u.Email, u.Name, string(u.Role), u.PasswordHash, u.TroupeID, u.IsActive, u.ForcePasswordChange).Scan(&id)
	return id, err
}

func GetUserByID(ctx context.Context, q Queryer, id int64) (*models.User, error) {
	return scanUser(q.QueryRowContext(ctx, userSelect+` WHERE id = $1`, id), id)
}

func GetUserByEmail(ctx context.Context, q Queryer, email string) (*models.User, error) {
	return scanUser(q.QueryRowContext(ctx, userSelect+` WHERE email = $1`, email), 0)
}

const userSelect = `
SELECT id, email, name, role, password_hash, troupe_id, is_active, force_password_change, created_at
FROM users`

func scanUser(row *sql.Row, id int64) (*models.User, error) {
	var u models.User
	var role string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.PasswordHash,
		&u.TroupeID, &u.IsActive, &u.ForcePasswordChange, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("user", id)
	}
	if err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}

func SetUserActive(ctx context.Context, q Queryer, id int64, active bool) error {
	res, err := q.ExecContext(ctx, `UPDATE users SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return NotFound("user", id)
	}
	return nil
}

func GrantDistrict(ctx context.Context, q Queryer, userID, districtID int64) error {
	_, err := q.ExecContext(ctx, `
INSERT INTO district_grants (user_id, district_id) VALUES ($1, $2)
ON CONFLICT DO NOTHING`, userID, districtID)
	return err
}

func RevokeDistrict(ctx context.Context, q Queryer, userID, districtID int64) error {
	_, err := q.ExecContext(ctx,
		`DELETE FROM district_grants WHERE user_id = $1 AND district_id = $2`, userID, districtID)
	return err
}

func GrantedDistricts(ctx context.Context, q Queryer, userID int64) ([]int64, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT district_id FROM district_grants WHERE user_id = $1 ORDER BY district_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	return result, rows.Err()
}
