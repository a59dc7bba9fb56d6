// Пакет api — REST-поверхность галереи. Обработчики тонкие: разбор
// запроса, вызов сервиса, раскладка доменных ошибок по статусам.
package api

import (
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Spok95/scout-gallery/internal/app"
	"github.com/Spok95/scout-gallery/internal/auth"
	"github.com/Spok95/scout-gallery/internal/models"
	"github.com/Spok95/scout-gallery/internal/service"
	"github.com/Spok95/scout-gallery/internal/storage"
)

type Handlers struct {
	svc       *service.Submissions
	sdb       *sql.DB
	store     storage.BlobStore
	limiter   *app.UploadLimiter
	jwt       *auth.Manager
	blacklist auth.Blacklist
	log       *zap.Logger
	loc       *time.Location
}

func NewHandlers(svc *service.Submissions, sdb *sql.DB, store storage.BlobStore, jwt *auth.Manager, bl auth.Blacklist, log *zap.Logger, loc *time.Location) *Handlers {
	return &Handlers{
		svc:       svc,
		sdb:       sdb,
		store:     store,
		limiter:   app.NewUploadLimiter(),
		jwt:       jwt,
		blacklist: bl,
		log:       log,
		loc:       loc,
	}
}

// Router собирает маршруты. Анонимные маршруты не закрыты RequireAuth:
// «approved видят все» решает authz, транспорт только передаёт актора.
func (h *Handlers) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), Metrics(), Identity(h.jwt, h.blacklist, h.sdb))

	api := r.Group("/api")

	api.POST("/login", h.Login)
	api.POST("/logout", RequireAuth(), h.Logout)

	api.POST("/sets", RequireAuth(), h.CreateSet)
	api.GET("/sets", h.BrowseSets)
	api.GET("/sets/:id", h.GetSet)
	api.PUT("/sets/:id/classify", RequireAuth(), h.ClassifySet)
	api.PUT("/sets/:id/classify-bulk", RequireAuth(), h.BulkClassifySet)
	api.POST("/sets/:id/approve", RequireAuth(), h.ApproveSet)
	api.POST("/sets/:id/reject", RequireAuth(), h.RejectSet)
	api.DELETE("/sets/:id", RequireAuth(), h.DeleteSet)

	api.POST("/groups", RequireAuth(), h.CreateGroup)
	api.GET("/groups/:id", h.GetGroup)
	api.PUT("/groups/:id", RequireAuth(), h.ModifyGroup)
	api.POST("/groups/:id/pictures", RequireAuth(), h.AddToGroup)
	api.DELETE("/groups/:id/pictures/:pid", RequireAuth(), h.RemoveFromGroup)
	api.DELETE("/groups/:id", RequireAuth(), h.DeleteGroup)

	api.GET("/districts", h.ListDistricts)
	api.GET("/districts/:id/groups", h.ListOrgGroups)
	api.GET("/troupes/:id/patrouilles", h.ListPatrouilles)

	api.GET("/categories", h.ListCategories)

	api.GET("/export/sets.xlsx",
		RequireRole(models.Admin, models.BrancheEclaireurs), h.ExportSets)

	admin := api.Group("", RequireRole(models.Admin))
	admin.POST("/districts", h.CreateDistrict)
	admin.DELETE("/districts/:id", h.DeleteDistrict)
	admin.POST("/org-groups", h.CreateOrgGroup)
	admin.POST("/troupes", h.CreateTroupe)
	admin.POST("/patrouilles", h.CreatePatrouille)
	admin.POST("/categories", h.CreateCategory)
	admin.PUT("/categories/:id/main-picture", h.SetCategoryMainPicture)
	admin.POST("/users", h.CreateUser)
	admin.PUT("/users/:id/active", h.SetUserActive)
	admin.POST("/users/:id/grants", h.GrantDistrict)
	admin.DELETE("/users/:id/grants/:did", h.RevokeDistrict)

	return r
}
