package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) setSession(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, maxAge, "/", "", h.secureCookie, true)
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bindStrictJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newUserResponse(u))
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindStrictJSON(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	u, token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	h.setSession(c, token, int(h.auth.SessionTTL().Seconds()))
	c.JSON(http.StatusOK, gin.H{"user": newUserResponse(u), "token": token})
}

func (h *Handler) Logout(c *gin.Context) {
	h.setSession(c, "", -1)
	c.Status(http.StatusNoContent)
}

func (h *Handler) Me(c *gin.Context) {
	claims := sessionClaims(c)
	if claims == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	u, err := h.auth.CurrentUser(c.Request.Context(), claims.UserID())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(u))
}
