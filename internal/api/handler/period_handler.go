package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/projectnuraya/tilawah-tracker/internal/dto"
	"github.com/projectnuraya/tilawah-tracker/internal/service"
	"github.com/projectnuraya/tilawah-tracker/pkg/response"
)

// PeriodHandler 周期管理 HTTP 处理器
type PeriodHandler struct {
	periodSvc service.PeriodService
	groupSvc  service.GroupService
}

// NewPeriodHandler 创建 PeriodHandler
func NewPeriodHandler(periodSvc service.PeriodService, groupSvc service.GroupService) *PeriodHandler {
	return &PeriodHandler{periodSvc: periodSvc, groupSvc: groupSvc}
}

// Open 开启新周期并生成分配
// POST /api/v1/groups/:id/periods
func (h *PeriodHandler) Open(c *gin.Context) {
	groupID := c.Param("id")
	callerID, ok := authorizeGroup(c, h.groupSvc, groupID)
	if !ok {
		return
	}
	var req dto.OpenPeriodRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.periodSvc.Open(c.Request.Context(), groupID, &req, callerID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, result)
}

// List 组内周期，按编号倒序
// GET /api/v1/groups/:id/periods
func (h *PeriodHandler) List(c *gin.Context) {
	groupID := c.Param("id")
	if _, ok := authorizeGroup(c, h.groupSvc, groupID); !ok {
		return
	}

	result, err := h.periodSvc.List(c.Request.Context(), groupID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// Get 周期详情，分配按槽位分组
// GET /api/v1/periods/:id
func (h *PeriodHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, ok := authorizeVia(c, h.groupSvc, h.periodSvc.GroupID, id); !ok {
		return
	}

	result, err := h.periodSvc.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// Lock 锁定周期
// POST /api/v1/periods/:id/lock
func (h *PeriodHandler) Lock(c *gin.Context) {
	id := c.Param("id")
	callerID, ok := authorizeVia(c, h.groupSvc, h.periodSvc.GroupID, id)
	if !ok {
		return
	}

	result, err := h.periodSvc.Lock(c.Request.Context(), id, callerID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}
