package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/scout-gallery/internal/auth"
	"github.com/Spok95/scout-gallery/internal/ctxutil"
	"github.com/Spok95/scout-gallery/internal/db"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token               string `json:"token"`
	Role                string `json:"role"`
	ForcePasswordChange bool   `json:"force_password_change"`
}

// Login не различает «нет такого пользователя» и «неверный пароль»:
// обе ошибки выглядят снаружи одинаково.
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		badRequest(c, "ожидаются email и password")
		return
	}

	ctx, cancel := ctxutil.WithDBTimeout(c.Request.Context())
	defer cancel()
	user, err := db.GetUserByEmail(ctx, h.sdb, req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized,
			errorBody{Code: "unauthorized", Message: "неверные email или пароль"})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusForbidden,
			errorBody{Code: "forbidden", Message: "учётная запись деактивирована"})
		return
	}

	token, err := h.jwt.Generate(user.ID, string(user.Role), user.TroupeID)
	if err != nil {
		writeErr(c, err)
		return
	}
	jsonOK(c, loginResponse{
		Token:               token,
		Role:                string(user.Role),
		ForcePasswordChange: user.ForcePasswordChange,
	})
}

// Logout кладёт jti в чёрный список на остаток жизни токена.
func (h *Handlers) Logout(c *gin.Context) {
	claims := claimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized,
			errorBody{Code: "unauthorized", Message: "требуется вход"})
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := h.blacklist.Revoke(c.Request.Context(), claims.ID, ttl); err != nil {
		writeErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
