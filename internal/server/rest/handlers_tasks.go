package rest

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
	"github.com/gin-gonic/gin"
)

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond(c, http.StatusBadRequest, codeValidation, "invalid task id")
		return 0, false
	}
	return id, true
}

func (s *HTTPServer) listTasks(c *gin.Context) {
	status, err := services.ParseTaskStatus(c.Query("status"))
	if err != nil {
		s.writeError(c, err)
		return
	}

	list, err := s.tasks.List(c.Request.Context(), authFrom(c).SubjectID, status)
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := taskListResponse{Tasks: make([]taskResponse, 0, len(list)), Total: len(list)}
	for _, t := range list {
		out.Tasks = append(out.Tasks, newTaskResponse(t))
	}
	c.JSON(http.StatusOK, out)
}

func (s *HTTPServer) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, codeValidation, bindingMessage(err))
		return
	}

	task, err := s.tasks.Create(c.Request.Context(), authFrom(c).SubjectID, req.Title, req.Description)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTaskResponse(task))
}

func (s *HTTPServer) getTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := s.tasks.Get(c.Request.Context(), authFrom(c).SubjectID, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (s *HTTPServer) updateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, codeValidation, bindingMessage(err))
		return
	}

	patch := models.TaskPatch{Title: req.Title, Description: req.Description, Completed: req.Completed}
	task, err := s.tasks.Update(c.Request.Context(), authFrom(c).SubjectID, id, patch)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (s *HTTPServer) deleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := s.tasks.Delete(c.Request.Context(), authFrom(c).SubjectID, id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *HTTPServer) toggleTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := s.tasks.Toggle(c.Request.Context(), authFrom(c).SubjectID, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTaskResponse(task))
}
