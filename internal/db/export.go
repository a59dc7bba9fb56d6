package db

import (
	"context"
	"time"

	"github.com/Spok95/scout-gallery/internal/models"
)

// ExportRow — плоская строка выгрузки: заявка вместе с именами по иерархии.
type ExportRow struct {
	SetID           int64
	Title           string
	Type            models.SetType
	Status          models.SetStatus
	DistrictName    string
	GroupName       string
	TroupeName      string
	CategoryName    *string
	AuthorEmail     string
	UploadedAt      time.Time
	ApprovedAt      *time.Time
	RejectionReason *string
	ViewCount       int64
	Pictures        int64
}

// ListExportRows возвращает заявки районов districtIDs; пустой срез
// districtIDs означает «все районы» (выгрузка админа).
func ListExportRows(ctx context.Context, q Queryer, districtIDs []int64) ([]ExportRow, error) {
	query := `
SELECT ps.id, ps.title, ps.type, ps.status,
       d.name, g.name, t.name, c.name,
       u.email, ps.uploaded_at, ps.approved_at, ps.rejection_reason,
       ps.view_count,
       (SELECT COUNT(*) FROM pictures p WHERE p.set_id = ps.id)
FROM picture_sets ps
JOIN troupes t ON t.id = ps.troupe_id
JOIN org_groups g ON g.id = t.group_id
JOIN districts d ON d.id = g.district_id
JOIN users u ON u.id = ps.uploaded_by
LEFT JOIN categories c ON c.id = ps.category_id`
	var args []any
	if len(districtIDs) > 0 {
		query += ` WHERE d.id = ANY($1)`
		args = append(args, districtIDs)
	}
	query += ` ORDER BY ps.status, d.name, ps.uploaded_at`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExportRow
	for rows.Next() {
		var r ExportRow
		if err := rows.Scan(&r.SetID, &r.Title, &r.Type, &r.Status,
			&r.DistrictName, &r.GroupName, &r.TroupeName, &r.CategoryName,
			&r.AuthorEmail, &r.UploadedAt, &r.ApprovedAt, &r.RejectionReason,
			&r.ViewCount, &r.Pictures); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
