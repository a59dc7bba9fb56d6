package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Spok95/scout-gallery/internal/models"
)

func CreateDistrict(ctx context.Context, q Queryer, d models.District) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		`INSERT INTO districts (name, code) VALUES ($1, $2) RETURNING id`,
		d.Name, d.Code).Scan(&id)
	return id, err
}

func GetDistrictByID(ctx context.Context, q Queryer, id int64) (*models.District, error) {
	var d models.District
	err := q.QueryRowContext(ctx,
		`SELECT id, name, code FROM districts WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("district", id)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func ListDistricts(ctx context.Context, q Queryer) ([]models.District, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name, code FROM districts ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.District
	for rows.Next() {
		var d models.District
		if err := rows.Scan(&d.ID, &d.Name, &d.Code); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// DeleteDistrict — район неизменяем, пока под ним есть группы.
func DeleteDistrict(ctx context.Context, q Queryer, id int64) error {
	var n int
	if err := q.QueryRowContext(ctx,
		`SELECT count(*) FROM org_groups WHERE district_id = $1`, id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("район %d: удаление запрещено, есть группы (%d)", id, n)
	}
	res, err := q.ExecContext(ctx, `DELETE FROM districts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return NotFound("district", id)
	}
	return nil
}

func CreateGroup(ctx context.Context, q Queryer, g models.Group) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		`INSERT INTO org_groups (name, code, district_id) VALUES ($1, $2, $3) RETURNING id`,
		g.Name, g.Code, g.DistrictID).Scan(&id)
	return id, err
}

func ListGroups(ctx context.Context, q Queryer, districtID int64) ([]models.Group, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, name, code, district_id FROM org_groups WHERE district_id = $1 ORDER BY code`, districtID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Code, &g.DistrictID); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

func CreateTroupe(ctx context.Context, q Queryer, t models.Troupe) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		`INSERT INTO troupes (name, code, group_id) VALUES ($1, $2, $3) RETURNING id`,
		t.Name, t.Code, t.GroupID).Scan(&id)
	return id, err
}

func GetTroupeByID(ctx context.Context, q Queryer, id int64) (*models.Troupe, error) {
	var t models.Troupe
	err := q.QueryRowContext(ctx,
		`SELECT id, name, code, group_id FROM troupes WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Code, &t.GroupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("troupe", id)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func CreatePatrouille(ctx context.Context, q Queryer, p models.Patrouille) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		`INSERT INTO patrouilles (name, totem, cri, troupe_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		p.Name, p.Totem, p.Cri, p.TroupeID).Scan(&id)
	return id, err
}

func ListPatrouilles(ctx context.Context, q Queryer, troupeID int64) ([]models.Patrouille, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, name, totem, cri, troupe_id FROM patrouilles WHERE troupe_id = $1 ORDER BY name`, troupeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Patrouille
	for rows.Next() {
		var p models.Patrouille
		if err := rows.Scan(&p.ID, &p.Name, &p.Totem, &p.Cri, &p.TroupeID); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// TroupeAncestry — подъём отряд → группа → район одним запросом.
func GetTroupeAncestry(ctx context.Context, q Queryer, troupeID int64) (*models.TroupeAncestry, error) {
	var a models.TroupeAncestry
	err := q.QueryRowContext(ctx, `
SELECT t.id, g.id, g.district_id
FROM troupes t
JOIN org_groups g ON g.id = t.group_id
WHERE t.id = $1`, troupeID).Scan(&a.TroupeID, &a.GroupID, &a.DistrictID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("troupe", troupeID)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
