package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/scout-gallery/internal/auth"
	"github.com/Spok95/scout-gallery/internal/authz"
	"github.com/Spok95/scout-gallery/internal/ctxutil"
	"github.com/Spok95/scout-gallery/internal/db"
	"github.com/Spok95/scout-gallery/internal/metrics"
	"github.com/Spok95/scout-gallery/internal/models"
)

const ctxActor = "actor"
const ctxClaims = "claims"

// Metrics считает запросы по методу/маршруту/статусу.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Identity разбирает Bearer-токен и собирает актора: роль и отряд из
// claims, допуски к районам — из БД на каждый запрос (гранты могли
// измениться после выпуска токена). Без токена запрос идёт дальше
// анонимом — правило «approved видят все» решает authz, не транспорт.
func Identity(m *auth.Manager, bl auth.Blacklist, sdb *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				errorBody{Code: "unauthorized", Message: "неверный формат заголовка Authorization"})
			return
		}
		claims, err := m.Parse(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				errorBody{Code: "unauthorized", Message: err.Error()})
			return
		}
		revoked, err := bl.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil || revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				errorBody{Code: "unauthorized", Message: "токен отозван"})
			return
		}

		ctx, cancel := ctxutil.WithDBTimeout(c.Request.Context())
		defer cancel()
		user, err := db.GetUserByID(ctx, sdb, claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				errorBody{Code: "unauthorized", Message: "пользователь не найден"})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden,
				errorBody{Code: "forbidden", Message: "учётная запись деактивирована"})
			return
		}
		grants, err := db.GrantedDistricts(ctx, sdb, user.ID)
		if err != nil {
			writeErr(c, err)
			c.Abort()
			return
		}

		c.Set(ctxActor, &authz.Actor{
			ID:               user.ID,
			Role:             user.Role,
			TroupeID:         user.TroupeID,
			GrantedDistricts: grants,
		})
		c.Set(ctxClaims, claims)
		c.Request = c.Request.WithContext(ctxutil.WithUserID(c.Request.Context(), user.ID))
		c.Next()
	}
}

// RequireAuth закрывает маршруты, где аноним не имеет смысла.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if actorFrom(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				errorBody{Code: "unauthorized", Message: "требуется вход"})
			return
		}
		c.Next()
	}
}

// RequireRole — грубый фильтр транспорта; тонкие правила решает authz.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorFrom(c)
		if actor == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				errorBody{Code: "unauthorized", Message: "требуется вход"})
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			errorBody{Code: "forbidden", Message: "доступ запрещён"})
	}
}

func actorFrom(c *gin.Context) *authz.Actor {
	v, ok := c.Get(ctxActor)
	if !ok {
		return nil
	}
	actor, _ := v.(*authz.Actor)
	return actor
}

func claimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
