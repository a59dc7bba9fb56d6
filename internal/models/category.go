package models

type Category struct {
	ID                 int64   `db:"id"`
	Name               string  `db:"name"`
	Type               SetType `db:"type"`
	ParentID           *int64  `db:"parent_id"` // максимум один уровень вложенности
	IsUploadDisabled   bool    `db:"is_upload_disabled"`
	IsHiddenFromBrowse bool    `db:"is_hidden_from_browse"`
	IsSchematicEnabled bool    `db:"is_schematic_enabled"`
	MainPictureID      *int64  `db:"main_picture_id"`
}
