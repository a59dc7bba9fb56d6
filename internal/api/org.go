package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/scout-gallery/internal/auth"
	"github.com/Spok95/scout-gallery/internal/db"
	"github.com/Spok95/scout-gallery/internal/models"
)

// Справочники иерархии открыты на чтение: по ним чеф выбирает отряд
// при загрузке, аноним — фильтры просмотра. Запись — только админ.

func (h *Handlers) ListDistricts(c *gin.Context) {
	out, err := db.ListDistricts(c.Request.Context(), h.sdb)
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonOK(c, out)
}

func (h *Handlers) ListOrgGroups(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := db.ListGroups(c.Request.Context(), h.sdb, id)
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonOK(c, out)
}

func (h *Handlers) ListPatrouilles(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := db.ListPatrouilles(c.Request.Context(), h.sdb, id)
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonOK(c, out)
}

type createDistrictRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (h *Handlers) CreateDistrict(c *gin.Context) {
	var req createDistrictRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		badRequest(c, "ожидается name")
		return
	}
	id, err := db.CreateDistrict(c.Request.Context(), h.sdb,
		models.District{Name: req.Name, Code: req.Code})
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonCreated(c, gin.H{"id": id})
}

func (h *Handlers) DeleteDistrict(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := db.DeleteDistrict(c.Request.Context(), h.sdb, id); err != nil {
		writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createOrgGroupRequest struct {
	Name       string `json:"name"`
	Code       string `json:"code"`
	DistrictID int64  `json:"district_id"`
}

func (h *Handlers) CreateOrgGroup(c *gin.Context) {
	var req createOrgGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.DistrictID == 0 {
		badRequest(c, "ожидаются name и district_id")
		return
	}
	id, err := db.CreateGroup(c.Request.Context(), h.sdb,
		models.Group{Name: req.Name, Code: req.Code, DistrictID: req.DistrictID})
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonCreated(c, gin.H{"id": id})
}

type createTroupeRequest struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	GroupID int64  `json:"group_id"`
}

func (h *Handlers) CreateTroupe(c *gin.Context) {
	var req createTroupeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.GroupID == 0 {
		badRequest(c, "ожидаются name и group_id")
		return
	}
	id, err := db.CreateTroupe(c.Request.Context(), h.sdb,
		models.Troupe{Name: req.Name, Code: req.Code, GroupID: req.GroupID})
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonCreated(c, gin.H{"id": id})
}

type createPatrouilleRequest struct {
	Name     string `json:"name"`
	Totem    string `json:"totem"`
	Cri      string `json:"cri"`
	TroupeID int64  `json:"troupe_id"`
}

func (h *Handlers) CreatePatrouille(c *gin.Context) {
	var req createPatrouilleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.TroupeID == 0 {
		badRequest(c, "ожидаются name и troupe_id")
		return
	}
	id, err := db.CreatePatrouille(c.Request.Context(), h.sdb, models.Patrouille{
		Name: req.Name, Totem: req.Totem, Cri: req.Cri, TroupeID: req.TroupeID,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonCreated(c, gin.H{"id": id})
}

type createUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
	TroupeID *int64 `json:"troupe_id"`
}

func (h *Handlers) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		badRequest(c, "ожидаются email, role и password")
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeErr(c, err)
		return
	}
	id, err := db.CreateUser(c.Request.Context(), h.sdb, models.User{
		Email:        req.Email,
		Name:         req.Name,
		Role:         models.Role(req.Role),
		PasswordHash: hash,
		TroupeID:     req.TroupeID,
		IsActive:     true,
		// первый пароль выдаёт админ, при входе его нужно сменить
		ForcePasswordChange: true,
	})
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonCreated(c, gin.H{"id": id})
}

type setActiveRequest struct {
	IsActive bool `json:"is_active"`
}

func (h *Handlers) SetUserActive(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "неверное тело запроса")
		return
	}
	if err := db.SetUserActive(c.Request.Context(), h.sdb, id, req.IsActive); err != nil {
		writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type grantRequest struct {
	DistrictID int64 `json:"district_id"`
}

func (h *Handlers) GrantDistrict(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DistrictID == 0 {
		badRequest(c, "ожидается district_id")
		return
	}
	if err := db.GrantDistrict(c.Request.Context(), h.sdb, id, req.DistrictID); err != nil {
		writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) RevokeDistrict(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	did, ok := pathID(c, "did")
	if !ok {
		return
	}
	if err := db.RevokeDistrict(c.Request.Context(), h.sdb, id, did); err != nil {
		writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
