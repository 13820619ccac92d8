package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pbaille/focusflow/internal/domain"
)

func (s *Server) startFocus(c *gin.Context) {
	var req domain.FocusStart
	if c.Request.ContentLength != 0 {
		if err := bind(c, &req); err != nil {
			fail(c, err)
			return
		}
	}
	fs, err := s.store.StartFocus(c.Request.Context(), userID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, fs)
}

func (s *Server) endFocus(c *gin.Context) {
	var req domain.FocusEnd
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	fs, err := s.store.EndFocus(c.Request.Context(), userID(c), req.SessionID, s.now())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fs)
}
