package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pbaille/focusflow/internal/domain"
)

func (s *Server) createUser(c *gin.Context) {
	var req domain.NewUser
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	u, err := s.store.CreateUser(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (s *Server) getProfile(c *gin.Context) {
	u, err := s.store.GetUser(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) updateProfile(c *gin.Context) {
	var patch domain.ProfilePatch
	if err := bind(c, &patch); err != nil {
		fail(c, err)
		return
	}
	u, err := s.store.UpdateProfile(c.Request.Context(), userID(c), patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (s *Server) getSettings(c *gin.Context) {
	settings, err := s.store.GetSettings(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) updateSettings(c *gin.Context) {
	var patch domain.SettingsPatch
	if err := bind(c, &patch); err != nil {
		fail(c, err)
		return
	}
	settings, err := s.store.UpdateSettings(c.Request.Context(), userID(c), patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) deleteUser(c *gin.Context) {
	if err := s.store.DeleteUser(c.Request.Context(), userID(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

func (s *Server) completeOnboarding(c *gin.Context) {
	var req domain.Onboarding
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	u, err := s.store.CompleteOnboarding(c.Request.Context(), userID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Onboarding completed", "user": u})
}
