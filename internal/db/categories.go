package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Spok95/scout-gallery/internal/models"
)

// CreateCategory допускает ровно один уровень вложенности:
// родитель сам не может иметь родителя.
func CreateCategory(ctx context.Context, q Queryer, c models.Category) (int64, error) {
	if c.ParentID != nil {
		parent, err := GetCategoryByID(ctx, q, *c.ParentID)
		if err != nil {
			return 0, err
		}
		if parent.ParentID != nil {
			return 0, fmt.Errorf("категория %d уже подкатегория, вложенность глубже одного уровня запрещена", parent.ID)
		}
	}
	var id int64
	err := q.QueryRowContext(ctx, `
INSERT INTO categories (name, type, parent_id, is_upload_disabled, is_hidden_from_browse, is_schematic_enabled)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`,
		c.Name, string(c.Type), c.ParentID, c.IsUploadDisabled, c.IsHiddenFromBrowse, c.IsSchematicEnabled).Scan(&id)
	return id, err
}

const categorySelect = `
SELECT id, name, type, parent_id, is_upload_disabled, is_hidden_from_browse, is_schematic_enabled, main_picture_id
FROM categories`

func GetCategoryByID(ctx context.Context, q Queryer, id int64) (*models.Category, error) {
	var c models.Category
	var typ string
	err := q.QueryRowContext(ctx, categorySelect+` WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &typ, &c.ParentID, &c.IsUploadDisabled,
			&c.IsHiddenFromBrowse, &c.IsSchematicEnabled, &c.MainPictureID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("category", id)
	}
	if err != nil {
		return nil, err
	}
	c.Type = models.SetType(typ)
	return &c, nil
}

func ListCategories(ctx context.Context, q Queryer, includeHidden bool) ([]models.Category, error) {
	query := categorySelect
	if !includeHidden {
		query += ` WHERE is_hidden_from_browse = false`
	}
	query += ` ORDER BY parent_id NULLS FIRST, name`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Category
	for rows.Next() {
		var c models.Category
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &typ, &c.ParentID, &c.IsUploadDisabled,
			&c.IsHiddenFromBrowse, &c.IsSchematicEnabled, &c.MainPictureID); err != nil {
			return nil, err
		}
		c.Type = models.SetType(typ)
		result = append(result, c)
	}
	return result, rows.Err()
}

func SetCategoryMainPicture(ctx context.Context, q Queryer, categoryID, pictureID int64) error {
	res, err := q.ExecContext(ctx,
		`UPDATE categories SET main_picture_id = $1 WHERE id = $2`, pictureID, categoryID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return NotFound("category", categoryID)
	}
	return nil
}
