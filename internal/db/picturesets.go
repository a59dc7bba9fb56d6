package db

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Spok95/scout-gallery/internal/models"
)

const setSelect = `
SELECT id, title, type, status, troupe_id, patrouille_id, category_id, sub_category_id,
       uploaded_by, uploaded_at, classified_by, classified_at, approved_by, approved_at,
       rejection_reason, is_highlight, view_count
FROM picture_sets`

// CreateSet вставляет набор и его снимки; display_order плотный, с единицы,
// в порядке загрузки файлов, позже не перенумеровывается.
func CreateSet(ctx context.Context, tx *sql.Tx, set *models.PictureSet) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `
INSERT INTO picture_sets (title, type, status, troupe_id, patrouille_id, uploaded_by, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`,
		set.Title, string(set.Type), string(models.StatusPending),
		set.TroupeID, set.PatrouilleID, set.UploadedBy, set.UploadedAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	for i := range set.Pictures {
		p := &set.Pictures[i]
		p.SetID = id
		p.DisplayOrder = i + 1
		err := tx.QueryRowContext(ctx, `
INSERT INTO pictures (set_id, path, display_order) VALUES ($1, $2, $3) RETURNING id`,
			id, p.Path, p.DisplayOrder).Scan(&p.ID)
		if err != nil {
			return 0, err
		}
	}
	return id, nil
}

func GetSetByID(ctx context.Context, q Queryer, id int64, forUpdate bool) (*models.PictureSet, error) {
	query := setSelect + ` WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	set, err := scanSet(q.QueryRowContext(ctx, query, id), id)
	if err != nil {
		return nil, err
	}
	pics, err := ListSetPictures(ctx, q, id)
	if err != nil {
		return nil, err
	}
	set.Pictures = pics
	return set, nil
}

func scanSet(row *sql.Row, id int64) (*models.PictureSet, error) {
	var s models.PictureSet
	var typ, status string
	err := row.Scan(&s.ID, &s.Title, &typ, &status, &s.TroupeID, &s.PatrouilleID,
		&s.CategoryID, &s.SubCategoryID, &s.UploadedBy, &s.UploadedAt,
		&s.ClassifiedBy, &s.ClassifiedAt, &s.ApprovedBy, &s.ApprovedAt,
		&s.RejectionReason, &s.IsHighlight, &s.ViewCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFound("picture_set", id)
	}
	if err != nil {
		return nil, err
	}
	s.Type = models.SetType(typ)
	s.Status = models.SetStatus(status)
	return &s, nil
}

func ListSetPictures(ctx context.Context, q Queryer, setID int64) ([]models.Picture, error) {
	rows, err := q.QueryContext(ctx, `
SELECT id, set_id, path, display_order, category_id, type, taken_at, design_group_id
FROM pictures WHERE set_id = $1 ORDER BY display_order`, setID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPictures(rows)
}

// IncrementViewCount — плюс один на каждое чтение, без верхней границы.
func IncrementViewCount(ctx context.Context, q Queryer, id int64) error {
	_, err := q.ExecContext(ctx,
		`UPDATE picture_sets SET view_count = view_count + 1 WHERE id = $1`, id)
	return err
}

// ClassifySet переводит набор в classified, только если он ещё не терминален.
// Возвращает число затронутых строк: 0 — гонку поймал условный UPDATE.
func ClassifySet(ctx context.Context, tx *sql.Tx, setID int64, categoryID int64, subCategoryID *int64, by int64, at time.Time) (int64, error) {
	res, err := tx.ExecContext(ctx, `
UPDATE picture_sets
SET status = $1, category_id = $2, sub_category_id = $3, classified_by = $4, classified_at = $5
WHERE id = $6 AND status IN ($7, $8)`,
		string(models.StatusClassified), categoryID, subCategoryID, by, at,
		setID, string(models.StatusPending), string(models.StatusClassified))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func ApproveSet(ctx context.Context, tx *sql.Tx, setID, by int64, at time.Time, isHighlight bool) (int64, error) {
	res, err := tx.ExecContext(ctx, `
UPDATE picture_sets
SET status = $1, approved_by = $2, approved_at = $3, is_highlight = $4
WHERE id = $5 AND status IN ($6, $7)`,
		string(models.StatusApproved), by, at, isHighlight,
		setID, string(models.StatusPending), string(models.StatusClassified))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func RejectSet(ctx context.Context, tx *sql.Tx, setID, by int64, at time.Time, reason string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
UPDATE picture_sets
SET status = $1, approved_by = $2, approved_at = $3, rejection_reason = $4
WHERE id = $5 AND status IN ($6, $7)`,
		string(models.StatusRejected), by, at, reason,
		setID, string(models.StatusPending), string(models.StatusClassified))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func DeleteSet(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM picture_sets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return NotFound("picture_set", id)
	}
	return nil
}

// BrowseFilter — фильтры публичной выдачи и кабинетов.
type BrowseFilter struct {
	Status     *models.SetStatus
	DistrictID *int64
	TroupeID   *int64
	CategoryID *int64
	// HideHiddenCategories — анонимная выдача не видит скрытые категории
	HideHiddenCategories bool
	Limit                int
	Offset               int
}

func BrowseSets(ctx context.Context, q Queryer, f BrowseFilter) ([]models.PictureSet, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Status != nil {
		where = append(where, `s.status = `+arg(string(*f.Status)))
	}
	if f.DistrictID != nil {
		where = append(where, `g.district_id = `+arg(*f.DistrictID))
	}
	if f.TroupeID != nil {
		where = append(where, `s.troupe_id = `+arg(*f.TroupeID))
	}
	if f.CategoryID != nil {
		where = append(where, `s.category_id = `+arg(*f.CategoryID))
	}
	if f.HideHiddenCategories {
		where = append(where, `(s.category_id IS NULL OR c.is_hidden_from_browse = false)`)
	}

	query := `
SELECT s.id, s.title, s.type, s.status, s.troupe_id, s.patrouille_id, s.category_id, s.sub_category_id,
       s.uploaded_by, s.uploaded_at, s.classified_by, s.classified_at, s.approved_by, s.approved_at,
       s.rejection_reason, s.is_highlight, s.view_count
FROM picture_sets s
JOIN troupes t ON t.id = s.troupe_id
JOIN org_groups g ON g.id = t.group_id
LEFT JOIN categories c ON c.id = s.category_id`
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY s.uploaded_at DESC, s.id DESC"
	if f.Limit > 0 {
		query += ` LIMIT ` + arg(f.Limit)
	}
	if f.Offset > 0 {
		query += ` OFFSET ` + arg(f.Offset)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.PictureSet
	for rows.Next() {
		var s models.PictureSet
		var typ, status string
		if err := rows.Scan(&s.ID, &s.Title, &typ, &status, &s.TroupeID, &s.PatrouilleID,
			&s.CategoryID, &s.SubCategoryID, &s.UploadedBy, &s.UploadedAt,
			&s.ClassifiedBy, &s.ClassifiedAt, &s.ApprovedBy, &s.ApprovedAt,
			&s.RejectionReason, &s.IsHighlight, &s.ViewCount); err != nil {
			return nil, err
		}
		s.Type = models.SetType(typ)
		s.Status = models.SetStatus(status)
		result = append(result, s)
	}
	return result, rows.Err()
}

// CountSetsByStatus — для метрики очереди модерации.
func CountSetsByStatus(ctx context.Context, q Queryer, status models.SetStatus) (int64, error) {
	var n int64
	err := q.QueryRowContext(ctx,
		`SELECT count(*) FROM picture_sets WHERE status = $1`, string(status)).Scan(&n)
	return n, err
}
