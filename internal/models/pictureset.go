package models

import "time"

type SetStatus string

const (
	StatusPending    SetStatus = "pending"
	StatusClassified SetStatus = "classified"
	StatusApproved   SetStatus = "approved"
	StatusRejected   SetStatus = "rejected"
)

// Terminal — из approved/rejected переходов нет.
func (s SetStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type SetType string

const (
	TypeInstallationPhoto SetType = "installation_photo"
	TypeSchematic         SetType = "schematic"
)

type PictureSet struct {
	ID              int64      `db:"id"`
	Title           string     `db:"title"`
	Type            SetType    `db:"type"`
	Status          SetStatus  `db:"status"`
	TroupeID        int64      `db:"troupe_id"`
	PatrouilleID    *int64     `db:"patrouille_id"`
	CategoryID      *int64     `db:"category_id"`
	SubCategoryID   *int64     `db:"sub_category_id"`
	UploadedBy      int64      `db:"uploaded_by"`
	UploadedAt      time.Time  `db:"uploaded_at"`
	ClassifiedBy    *int64     `db:"classified_by"`
	ClassifiedAt    *time.Time `db:"classified_at"`
	ApprovedBy      *int64     `db:"approved_by"`
	ApprovedAt      *time.Time `db:"approved_at"`
	RejectionReason *string    `db:"rejection_reason"`
	IsHighlight     bool       `db:"is_highlight"`
	ViewCount       int64      `db:"view_count"`

	Pictures []Picture `db:"-"`
}

type Picture struct {
	ID           int64      `db:"id"`
	SetID        int64      `db:"set_id"`
	Path         string     `db:"path"` // непрозрачный локатор из blob-хранилища
	DisplayOrder int        `db:"display_order"`
	CategoryID   *int64     `db:"category_id"`
	Type         *SetType   `db:"type"`
	TakenAt      *time.Time `db:"taken_at"`
	GroupID      *int64     `db:"design_group_id"`
}
