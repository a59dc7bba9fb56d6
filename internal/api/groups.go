package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/scout-gallery/internal/service"
)

type createGroupRequest struct {
	PictureIDs []int64 `json:"picture_ids"`
	PrimaryID  *int64  `json:"primary_id"`
	Name       *string `json:"name"`
}

func (h *Handlers) CreateGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "неверное тело запроса")
		return
	}
	view, err := h.svc.CreateGroup(c.Request.Context(), actorFrom(c), service.CreateGroupInput{
		PictureIDs: req.PictureIDs,
		PrimaryID:  req.PrimaryID,
		Name:       req.Name,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonCreated(c, view)
}

func (h *Handlers) GetGroup(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.GetGroup(c.Request.Context(), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonOK(c, view)
}

type addToGroupRequest struct {
	PictureIDs []int64 `json:"picture_ids"`
}

func (h *Handlers) AddToGroup(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req addToGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.PictureIDs) == 0 {
		badRequest(c, "ожидается непустой picture_ids")
		return
	}
	view, err := h.svc.AddToGroup(c.Request.Context(), actorFrom(c), id, req.PictureIDs)
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonOK(c, view)
}

// RemoveFromGroup возвращает 204, если после удаления группа распустилась.
func (h *Handlers) RemoveFromGroup(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	pid, ok := pathID(c, "pid")
	if !ok {
		return
	}
	view, err := h.svc.RemoveFromGroup(c.Request.Context(), actorFrom(c), id, pid)
	if err != nil {
		writeErr(c, err)
		return
	}
	if view == nil {
		c.Status(http.StatusNoContent)
		return
	}
	jsonOK(c, view)
}

type modifyGroupRequest struct {
	Name       *string `json:"name"`
	CategoryID *int64  `json:"category_id"`
}

func (h *Handlers) ModifyGroup(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req modifyGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "неверное тело запроса")
		return
	}
	view, err := h.svc.ModifyGroup(c.Request.Context(), actorFrom(c), id, service.ModifyGroupInput{
		Name:       req.Name,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonOK(c, view)
}

func (h *Handlers) DeleteGroup(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteGroup(c.Request.Context(), actorFrom(c), id); err != nil {
		writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
