package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/scout-gallery/internal/db"
	"github.com/Spok95/scout-gallery/internal/models"
	"github.com/Spok95/scout-gallery/internal/service"
)

// CreateSet — multipart: метаданные + файлы. Передача байтов в хранилище
// происходит до вызова воркфлоу: сервис получает готовые локаторы и
// дальше не ждёт никакого I/O, кроме одной транзакции.
func (h *Handlers) CreateSet(c *gin.Context) {
	actor := actorFrom(c)

	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "ожидается multipart-форма")
		return
	}
	title := c.PostForm("title")
	setType := models.SetType(c.PostForm("type"))
	troupeID, err := strconv.ParseInt(c.PostForm("troupe_id"), 10, 64)
	if err != nil {
		badRequest(c, "troupe_id обязателен")
		return
	}
	var patrouilleID *int64
	if v := c.PostForm("patrouille_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			badRequest(c, "patrouille_id: не число")
			return
		}
		patrouilleID = &id
	}
	files := form.File["files"]

	// один конкурентный аплоад на отряд
	unlock := h.limiter.Lock(troupeID)
	defer unlock()

	var uploads []service.PictureUpload
	var stored []string
	cleanup := func() {
		for _, loc := range stored {
			_ = h.store.Delete(c.Request.Context(), loc)
		}
	}
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			cleanup()
			badRequest(c, "не удалось прочитать файл "+fh.Filename)
			return
		}
		locator, err := h.store.Store(c.Request.Context(), f, fh.Header.Get("Content-Type"))
		_ = f.Close()
		if err != nil {
			cleanup()
			writeErr(c, err)
			return
		}
		stored = append(stored, locator)
		uploads = append(uploads, service.PictureUpload{Path: locator})
	}

	set, err := h.svc.CreateSet(c.Request.Context(), actor, service.CreateSetInput{
		Title:        title,
		Type:         setType,
		TroupeID:     troupeID,
		PatrouilleID: patrouilleID,
		Pictures:     uploads,
	})
	if err != nil {
		cleanup()
		writeErr(c, err)
		return
	}
	jsonCreated(c, set)
}

func (h *Handlers) GetSet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	set, err := h.svc.GetSet(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonOK(c, set)
}

func (h *Handlers) BrowseSets(c *gin.Context) {
	var f db.BrowseFilter
	if v := c.Query("status"); v != "" {
		st := models.SetStatus(v)
		f.Status = &st
	}
	if v := c.Query("district_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.DistrictID = &id
		}
	}
	if v := c.Query("troupe_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.TroupeID = &id
		}
	}
	if v := c.Query("category_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.CategoryID = &id
		}
	}
	f.Limit = intQuery(c, "limit", 50)
	f.Offset = intQuery(c, "offset", 0)

	sets, err := h.svc.Browse(c.Request.Context(), actorFrom(c), f)
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonOK(c, sets)
}

type classifyRequest struct {
	CategoryID    int64  `json:"category_id"`
	SubCategoryID *int64 `json:"sub_category_id"`
}

func (h *Handlers) ClassifySet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "неверное тело запроса")
		return
	}
	set, err := h.svc.Classify(c.Request.Context(), actorFrom(c), id, req.CategoryID, req.SubCategoryID)
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonOK(c, set)
}

type bulkClassifyRequest struct {
	SetCategoryID    *int64 `json:"set_category_id"`
	SetSubCategoryID *int64 `json:"set_sub_category_id"`
	Pictures         []struct {
		PictureID  int64      `json:"picture_id"`
		CategoryID int64      `json:"category_id"`
		Type       *string    `json:"type"`
		TakenAt    *time.Time `json:"taken_at"`
	} `json:"pictures"`
}

func (h *Handlers) BulkClassifySet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req bulkClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "неверное тело запроса")
		return
	}
	in := service.BulkClassifyInput{
		SetID:            id,
		SetCategoryID:    req.SetCategoryID,
		SetSubCategoryID: req.SetSubCategoryID,
	}
	for _, p := range req.Pictures {
		item := service.BulkClassifyItem{
			PictureID:  p.PictureID,
			CategoryID: p.CategoryID,
			TakenAt:    p.TakenAt,
		}
		if p.Type != nil {
			t := models.SetType(*p.Type)
			item.Type = &t
		}
		in.Items = append(in.Items, item)
	}
	set, err := h.svc.BulkClassify(c.Request.Context(), actorFrom(c), in)
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonOK(c, set)
}

type approveRequest struct {
	IsHighlight bool `json:"is_highlight"`
}

func (h *Handlers) ApproveSet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req approveRequest
	_ = c.ShouldBindJSON(&req) // тело опционально
	set, err := h.svc.Approve(c.Request.Context(), actorFrom(c), id, req.IsHighlight)
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonOK(c, set)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *Handlers) RejectSet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "неверное тело запроса")
		return
	}
	set, err := h.svc.Reject(c.Request.Context(), actorFrom(c), id, req.Reason)
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonOK(c, set)
}

func (h *Handlers) DeleteSet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteSet(c.Request.Context(), actorFrom(c), id); err != nil {
		writeErr(c, err)
		return
	}
	c.Status(204)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, name+": не число")
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
