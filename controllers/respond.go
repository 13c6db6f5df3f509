package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// All responses use the { success, data, error? } envelope the frontend
// expects.

func respondOK(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"success": false, "error": msg})
}

// respondPolicy reports a policy violation with structured detail so the
// UI can guide the user (e.g. the list of unfinished critical items).
func respondPolicy(c *gin.Context, msg string, detail gin.H) {
	c.JSON(http.StatusConflict, gin.H{"success": false, "error": msg, "data": detail})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// currentUser resolves the acting user: JWT identity when auth is on,
// otherwise the name the client supplied in the payload.
func currentUser(c *gin.Context, fallback string) string {
	if v := c.GetString("user_name"); v != "" {
		return v
	}
	if v := c.GetString("user_id"); v != "" {
		return v
	}
	if fallback != "" {
		return fallback
	}
	return "system"
}
