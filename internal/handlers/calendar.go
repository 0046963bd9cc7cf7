package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/calendar/auth (staff) — starts the Google consent flow used to
// obtain the sync token.
func (h *API) CalendarAuth(c *gin.Context) {
	if h.OAuth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google calendar not configured"})
		return
	}
	state := h.OAuth.StateToken()
	c.JSON(http.StatusOK, gin.H{
		"auth_url": h.OAuth.AuthCodeURL(state),
		"state":    state,
	})
}

// GET /oauth2callback — exchanges the authorization code. The returned
// token JSON is meant to be placed in GOOGLE_TOKEN_JSON; it is not stored
// server-side.
func (h *API) CalendarOAuthCallback(c *gin.Context) {
	if h.OAuth == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google calendar not configured"})
		return
	}
	if !h.OAuth.VerifyState(c.Query("state")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "authorization code required"})
		return
	}
	tokenJSON, err := h.OAuth.Exchange(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to exchange code for token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "authorization successful",
		"token":   tokenJSON,
	})
}
