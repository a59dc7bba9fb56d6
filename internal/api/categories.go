package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/scout-gallery/internal/db"
	"github.com/Spok95/scout-gallery/internal/models"
)

// ListCategories: скрытые категории видят только авторизованные.
func (h *Handlers) ListCategories(c *gin.Context) {
	includeHidden := actorFrom(c) != nil
	out, err := db.ListCategories(c.Request.Context(), h.sdb, includeHidden)
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonOK(c, out)
}

type createCategoryRequest struct {
	Name               string `json:"name"`
	Type               string `json:"type"`
	ParentID           *int64 `json:"parent_id"`
	IsUploadDisabled   bool   `json:"is_upload_disabled"`
	IsHiddenFromBrowse bool   `json:"is_hidden_from_browse"`
	IsSchematicEnabled bool   `json:"is_schematic_enabled"`
}

func (h *Handlers) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		badRequest(c, "ожидаются name и type")
		return
	}
	id, err := db.CreateCategory(c.Request.Context(), h.sdb, models.Category{
		Name:               req.Name,
		Type:               models.SetType(req.Type),
		ParentID:           req.ParentID,
		IsUploadDisabled:   req.IsUploadDisabled,
		IsHiddenFromBrowse: req.IsHiddenFromBrowse,
		IsSchematicEnabled: req.IsSchematicEnabled,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonCreated(c, gin.H{"id": id})
}

type mainPictureRequest struct {
	PictureID int64 `json:"picture_id"`
}

func (h *Handlers) SetCategoryMainPicture(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req mainPictureRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PictureID == 0 {
		badRequest(c, "ожидается picture_id")
		return
	}
	if err := db.SetCategoryMainPicture(c.Request.Context(), h.sdb, id, req.PictureID); err != nil {
		writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
