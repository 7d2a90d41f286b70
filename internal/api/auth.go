package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"walletsvc/internal/gate"
)

// LoginRequest carries the credentials for a login attempt.
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// LoginHandler authenticates the user and opens a session on success.
func LoginHandler(g *gate.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Request body must contain username and password"})
			return
		}
		env, err := g.Login(c.Request.Context(), req.Username, req.Password)
		respond(c, env, err)
	}
}

// LogoutHandler closes the current session.
func LogoutHandler(g *gate.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		env, err := g.Logout(c.Request.Context())
		respond(c, env, err)
	}
}
