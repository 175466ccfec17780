package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/models"
	"task-tracker/internal/services"
)

// TaskHandler はタスク関連のハンドラーを管理します。
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler は新しいTaskHandlerを作成します。
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// GetTasksHandler はタスク一覧を返します。?search= (旧名 ?search-area=) でタイトルを絞り込みます。
func (h *TaskHandler) GetTasksHandler(c *gin.Context) {
	search, ok := c.GetQuery("search")
	if !ok {
		search = c.Query("search-area")
	}

	list, err := h.taskService.ListTasks(c.Request.Context(), currentUser(c), search)
	if err != nil {
		respondError(c, err, "Failed to fetch tasks")
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetTaskByIDHandler は指定IDのタスクを返します。
func (h *TaskHandler) GetTaskByIDHandler(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err, "Failed to fetch task")
		return
	}
	c.JSON(http.StatusOK, task)
}

// CreateTaskHandler は新しいタスクを作成します。
func (h *TaskHandler) CreateTaskHandler(c *gin.Context) {
	var req models.TaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), currentUser(c), req)
	if err != nil {
		respondError(c, err, "Failed to save task to database")
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTaskHandler はタスクを更新します。PUT と PATCH のどちらも部分更新として扱います。
func (h *TaskHandler) UpdateTaskHandler(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	var req models.TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), currentUser(c), id, req)
	if err != nil {
		respondError(c, err, "Failed to update task")
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTaskHandler はタスクを削除します。
func (h *TaskHandler) DeleteTaskHandler(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err, "Failed to delete task")
		return
	}
	c.Status(http.StatusNoContent)
}
