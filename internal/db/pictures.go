package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Spok95/scout-gallery/internal/models"
)

const pictureSelect = `
SELECT id, set_id, path, display_order, category_id, type, taken_at, design_group_id
FROM pictures`

func GetPictureByID(ctx context.Context, q Queryer, id int64) (*models.Picture, error) {
	row := q.QueryRowContext(ctx, pictureSelect+` WHERE id = $1`, id)
	var p models.Picture
	var typ sql.NullString
	err := row.Scan(&p.ID, &p.SetID, &p.Path, &p.DisplayOrder, &p.CategoryID, &typ, &p.TakenAt, &p.GroupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("picture", id)
	}
	if err != nil {
		return nil, err
	}
	if typ.Valid {
		t := models.SetType(typ.String)
		p.Type = &t
	}
	return &p, nil
}

// GetPicturesByIDs сохраняет порядок переданных id и требует, чтобы
// нашлись все: групповые операции не работают с «почти всеми» снимками.
func GetPicturesByIDs(ctx context.Context, q Queryer, ids []int64) ([]models.Picture, error) {
	byID := make(map[int64]models.Picture, len(ids))
	rows, err := q.QueryContext(ctx, pictureSelect+` WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	pics, err := scanPictures(rows)
	if err != nil {
		return nil, err
	}
	for _, p := range pics {
		byID[p.ID] = p
	}

	result := make([]models.Picture, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, NotFound("picture", id)
		}
		result = append(result, p)
	}
	return result, nil
}

// PictureDistricts — район каждого снимка через его набор и отряд.
func PictureDistricts(ctx context.Context, q Queryer, ids []int64) (map[int64]int64, error) {
	rows, err := q.QueryContext(ctx, `
SELECT p.id, g.district_id
FROM pictures p
JOIN picture_sets s ON s.id = p.set_id
JOIN troupes t ON t.id = s.troupe_id
JOIN org_groups g ON g.id = t.group_id
WHERE p.id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]int64, len(ids))
	for rows.Next() {
		var picID, districtID int64
		if err := rows.Scan(&picID, &districtID); err != nil {
			return nil, err
		}
		result[picID] = districtID
	}
	return result, rows.Err()
}

// ClassifyPicture — индивидуальная классификация снимка; статус набора не трогает.
func ClassifyPicture(ctx context.Context, tx *sql.Tx, id int64, categoryID int64, ptype *models.SetType, takenAt *time.Time) error {
	var typ *string
	if ptype != nil {
		s := string(*ptype)
		typ = &s
	}
	res, err := tx.ExecContext(ctx, `
UPDATE pictures SET category_id = $1, type = $2, taken_at = $3 WHERE id = $4`,
		categoryID, typ, takenAt, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return NotFound("picture", id)
	}
	return nil
}

func SetPicturesGroup(ctx context.Context, tx *sql.Tx, ids []int64, groupID *int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE pictures SET design_group_id = $1 WHERE id = ANY($2)`, groupID, ids)
	return err
}

func PicturesInGroup(ctx context.Context, q Queryer, groupID int64) ([]models.Picture, error) {
	rows, err := q.QueryContext(ctx,
		pictureSelect+` WHERE design_group_id = $1 ORDER BY display_order, id`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPictures(rows)
}

// ListPicturePaths — все живые локаторы; фоновая задача сверяет с ними диск.
func ListPicturePaths(ctx context.Context, q Queryer) (map[string]struct{}, error) {
	rows, err := q.QueryContext(ctx, `SELECT path FROM pictures`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		result[p] = struct{}{}
	}
	return result, rows.Err()
}

func scanPictures(rows *sql.Rows) ([]models.Picture, error) {
	var result []models.Picture
	for rows.Next() {
		var p models.Picture
		var typ sql.NullString
		if err := rows.Scan(&p.ID, &p.SetID, &p.Path, &p.DisplayOrder,
			&p.CategoryID, &typ, &p.TakenAt, &p.GroupID); err != nil {
			return nil, err
		}
		if typ.Valid {
			t := models.SetType(typ.String)
			p.Type = &t
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
