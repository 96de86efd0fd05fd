package handlers

import (
	"net/http"

	"logistics_manager/internal/models"
	"logistics_manager/internal/redis"
	"logistics_manager/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	SessionHeader = "X-Session-ID"
	sessionKey    = "session"
)

// RequireSession rejects requests without a live session and stores the
// session on the context.
func (h *APIHandler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := h.svc.Auth.Session(c.Request.Context(), c.GetHeader(SessionHeader))
		if err != nil {
			h.fail(c, err)
			c.Abort()
			return
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

// RequireRole rejects sessions whose role ranks below min.
func RequireRole(min models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := currentSession(c)
		if session == nil || !models.UserRole(session.Role).Allows(min) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}

func currentSession(c *gin.Context) *redis.SessionData {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*redis.SessionData)
	return session
}

// actorID is the id of the logged-in user, nil outside a session.
func actorID(c *gin.Context) *uint {
	session := currentSession(c)
	if session == nil {
		return nil
	}
	id := session.UserID
	return &id
}

func (h *APIHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.svc.Auth.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *APIHandler) Logout(c *gin.Context) {
	if err := h.svc.Auth.Logout(c.Request.Context(), c.GetHeader(SessionHeader)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c))
}

func (h *APIHandler) ChangePassword(c *gin.Context) {
	var req struct {
		Current string `json:"currentPassword"`
		New     string `json:"newPassword"`
	}
	if !bind(c, &req) {
		return
	}
	if err := h.svc.Users.ChangePassword(c.Request.Context(), currentSession(c).UserID, req.Current, req.New); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) ListUsers(c *gin.Context) {
	users, err := h.svc.Users.GetAllUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *APIHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	user, err := h.svc.Users.GetUserByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *APIHandler) CreateUser(c *gin.Context) {
	var req struct {
		models.User
		Password string `json:"password"`
	}
	req.IsActive = true
	if !bind(c, &req) {
		return
	}
	user := req.User
	if err := h.svc.Users.CreateUser(c.Request.Context(), &user, req.Password); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *APIHandler) PatchUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	body, ok := rawBody(c)
	if !ok {
		return
	}
	user, err := h.svc.Users.PatchUser(c.Request.Context(), id, body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *APIHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if session := currentSession(c); session != nil && session.UserID == id {
		c.JSON(http.StatusConflict, gin.H{"error": "You cannot delete your own account"})
		return
	}
	if err := h.svc.Users.DeleteUser(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
