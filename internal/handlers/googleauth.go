package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pitstop/pitstop-backend/internal/requestdata"
	"github.com/pitstop/pitstop-backend/internal/services"
)

type GoogleAuthHandler struct {
	googleAuth services.GoogleAuthService
}

func NewGoogleAuthHandler(googleAuth services.GoogleAuthService) *GoogleAuthHandler {
	return &GoogleAuthHandler{googleAuth: googleAuth}
}

// AuthURL returns the consent URL the client should redirect the learner to.
func (gh *GoogleAuthHandler) AuthURL(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	RespondOK(c, gin.H{"url": gh.googleAuth.AuthURL(rd.UserID)})
}

// Callback receives the provider redirect. It is unauthenticated; the state
// parameter identifies the learner who started the flow.
func (gh *GoogleAuthHandler) Callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if err := gh.googleAuth.HandleCallback(c.Request.Context(), state, code); err != nil {
		RespondError(c, http.StatusBadRequest, "oauth_callback_failed", err)
		return
	}
	RespondOK(c, gin.H{"message": "google calendar connected"})
}

func (gh *GoogleAuthHandler) Status(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	connected, err := gh.googleAuth.Connected(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "status_failed", err)
		return
	}
	RespondOK(c, gin.H{"connected": connected})
}
