package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/projectnuraya/tilawah-tracker/internal/dto"
	"github.com/projectnuraya/tilawah-tracker/internal/service"
	"github.com/projectnuraya/tilawah-tracker/pkg/response"
)

// ProgressHandler 分配进度 HTTP 处理器
type ProgressHandler struct {
	progressSvc service.ProgressService
	groupSvc    service.GroupService
}

// NewProgressHandler 创建 ProgressHandler
func NewProgressHandler(progressSvc service.ProgressService, groupSvc service.GroupService) *ProgressHandler {
	return &ProgressHandler{progressSvc: progressSvc, groupSvc: groupSvc}
}

// UpdateStatus 修改进度状态
// PATCH /api/v1/assignments/:id
func (h *ProgressHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	callerID, ok := authorizeVia(c, h.groupSvc, h.progressSvc.GroupID, id)
	if !ok {
		return
	}
	var req dto.UpdateProgressRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.progressSvc.SetStatus(c.Request.Context(), id, &req, callerID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// UpdateSlot 手动调整槽位
// PUT /api/v1/assignments/:id/slot
func (h *ProgressHandler) UpdateSlot(c *gin.Context) {
	id := c.Param("id")
	callerID, ok := authorizeVia(c, h.groupSvc, h.progressSvc.GroupID, id)
	if !ok {
		return
	}
	var req dto.UpdateSlotRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.progressSvc.SetSlot(c.Request.Context(), id, &req, callerID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}
