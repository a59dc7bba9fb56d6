package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Spok95/scout-gallery/internal/models"
)

func CreateDesignGroup(ctx context.Context, tx *sql.Tx, g models.DesignGroup) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
INSERT INTO design_groups (name, primary_picture_id, category_id, created_by, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`,
		g.Name, g.PrimaryPictureID, g.CategoryID, g.CreatedBy, g.CreatedAt).Scan(&id)
	return id, err
}

const groupSelect = `
SELECT id, name, primary_picture_id, category_id, created_by, created_at
FROM design_groups`

func GetDesignGroupByID(ctx context.Context, q Queryer, id int64, forUpdate bool) (*models.DesignGroup, error) {
	query := groupSelect + ` WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var g models.DesignGroup
	err := q.QueryRowContext(ctx, query, id).
		Scan(&g.ID, &g.Name, &g.PrimaryPictureID, &g.CategoryID, &g.CreatedBy, &g.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("design_group", id)
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func UpdateDesignGroupPrimary(ctx context.Context, tx *sql.Tx, id, primaryPictureID int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE design_groups SET primary_picture_id = $1 WHERE id = $2`, primaryPictureID, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return NotFound("design_group", id)
	}
	return nil
}

func UpdateDesignGroup(ctx context.Context, tx *sql.Tx, id int64, name *string, categoryID *int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE design_groups SET name = $1, category_id = $2 WHERE id = $3`, name, categoryID, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return NotFound("design_group", id)
	}
	return nil
}

func DeleteDesignGroup(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM design_groups WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return NotFound("design_group", id)
	}
	return nil
}
