package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"task_manager/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK          = "ok"
	statusUnavailable = "unavailable"

	errTaskRequired = "Task is required"
	errInvalidIndex = "Invalid index"
	errFetchTasks   = "Error fetching tasks"
	errAddTask      = "Error adding task"
	errDeleteTask   = "Error deleting task"

	healthTimeout = 2 * time.Second
)

type taskRequest struct {
	Task string `form:"task" json:"task" example:"Buy milk"`
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	h.logError(logKey, err, kv...)
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	if h.opts.DB != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := h.opts.DB.PingContext(ctx); err != nil {
			h.logError("health_db_ping_failed", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": statusUnavailable})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      List tasks
// @Description  Task texts of the logged-in user, oldest first.
// @Tags         tasks
// @Produce      json
// @Success      200  {array}   string
// @Failure      302  {string}  string  "no session, redirected to login"
// @Failure      500  {object}  map[string]string
// @Router       /api/tasks [get]
func (h *Handler) listTasks(c *gin.Context) {
	uid := c.GetInt(ctxUserID)
	tasks, err := h.services.Tasks.List(c.Request.Context(), uid)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errFetchTasks, "tasks_list_failed", err, "user_id", uid)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary      Add a task
// @Tags         tasks
// @Accept       json,x-www-form-urlencoded
// @Param        body  body  taskRequest  true  "task text"
// @Success      200  {string}  string  "empty body"
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/tasks [post]
func (h *Handler) addTask(c *gin.Context) {
	uid := c.GetInt(ctxUserID)

	var in taskRequest
	if err := c.ShouldBind(&in); err != nil && h.log != nil {
		h.log.Infow("tasks_bad_request_body", "err", err)
	}

	err := h.services.Tasks.Add(c.Request.Context(), uid, in.Task)
	switch {
	case err == nil:
		c.Status(http.StatusOK)
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": errTaskRequired})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errAddTask, "tasks_add_failed", err, "user_id", uid)
	}
}

// @Summary      Delete a task by position
// @Description  index is the task's position in the list returned by GET /api/tasks.
// @Tags         tasks
// @Param        index  path  int  true  "zero-based position"
// @Success      200  {string}  string  "empty body"
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/tasks/{index} [delete]
func (h *Handler) deleteTask(c *gin.Context) {
	uid := c.GetInt(ctxUserID)

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidIndex})
		return
	}

	err = h.services.Tasks.DeleteAt(c.Request.Context(), uid, index)
	switch {
	case err == nil:
		c.Status(http.StatusOK)
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidIndex})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errDeleteTask, "tasks_delete_failed", err, "user_id", uid, "index", index)
	}
}
