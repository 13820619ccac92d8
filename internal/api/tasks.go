package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pbaille/focusflow/internal/domain"
)

func (s *Server) listTasks(c *gin.Context) {
	tasks, err := s.store.ListTasks(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) createTask(c *gin.Context) {
	var req domain.NewTask
	if err := bind(c, &req); err != nil {
		fail(c, err)
		return
	}
	t, err := s.store.CreateTask(c.Request.Context(), userID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) updateTask(c *gin.Context) {
	var patch domain.TaskPatch
	if err := bind(c, &patch); err != nil {
		fail(c, err)
		return
	}
	t, err := s.store.UpdateTask(c.Request.Context(), userID(c), c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) deleteTask(c *gin.Context) {
	if err := s.store.DeleteTask(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

func (s *Server) setTaskStatus(c *gin.Context) {
	patch := domain.StatusPatch(c.Query("status"))
	if err := domain.Validate(patch); err != nil {
		fail(c, err)
		return
	}
	if *patch.Status == "" {
		fail(c, fmt.Errorf("%w: status query parameter is required", errBadRequest))
		return
	}
	t, err := s.store.SetTaskStatus(c.Request.Context(), userID(c), c.Param("id"), *patch.Status)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}
