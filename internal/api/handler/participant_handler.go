package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/projectnuraya/tilawah-tracker/internal/dto"
	"github.com/projectnuraya/tilawah-tracker/internal/service"
	"github.com/projectnuraya/tilawah-tracker/pkg/response"
)

// ParticipantHandler 参与者管理 HTTP 处理器
type ParticipantHandler struct {
	participantSvc service.ParticipantService
	groupSvc       service.GroupService
}

// NewParticipantHandler 创建 ParticipantHandler
func NewParticipantHandler(participantSvc service.ParticipantService, groupSvc service.GroupService) *ParticipantHandler {
	return &ParticipantHandler{participantSvc: participantSvc, groupSvc: groupSvc}
}

// List 组内参与者，默认仅活跃成员
// GET /api/v1/groups/:id/participants?include_inactive=true
func (h *ParticipantHandler) List(c *gin.Context) {
	groupID := c.Param("id")
	if _, ok := authorizeGroup(c, h.groupSvc, groupID); !ok {
		return
	}
	includeInactive, _ := strconv.ParseBool(c.DefaultQuery("include_inactive", "false"))

	result, err := h.participantSvc.List(c.Request.Context(), groupID, includeInactive)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// Create 添加单个参与者
// POST /api/v1/groups/:id/participants
func (h *ParticipantHandler) Create(c *gin.Context) {
	groupID := c.Param("id")
	callerID, ok := authorizeGroup(c, h.groupSvc, groupID)
	if !ok {
		return
	}
	var req dto.CreateParticipantRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.participantSvc.Enroll(c.Request.Context(), groupID, &req, callerID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, result)
}

// BulkCreate 批量添加参与者
// POST /api/v1/groups/:id/participants/bulk
func (h *ParticipantHandler) BulkCreate(c *gin.Context) {
	groupID := c.Param("id")
	callerID, ok := authorizeGroup(c, h.groupSvc, groupID)
	if !ok {
		return
	}
	var req dto.BulkCreateParticipantsRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.participantSvc.EnrollBulk(c.Request.Context(), groupID, &req, callerID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, result)
}

// Get 参与者详情及分配历史
// GET /api/v1/participants/:id
func (h *ParticipantHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, ok := authorizeVia(c, h.groupSvc, h.participantSvc.GroupID, id); !ok {
		return
	}

	result, err := h.participantSvc.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// Update 修改名称或联系方式
// PUT /api/v1/participants/:id
func (h *ParticipantHandler) Update(c *gin.Context) {
	id := c.Param("id")
	callerID, ok := authorizeVia(c, h.groupSvc, h.participantSvc.GroupID, id)
	if !ok {
		return
	}
	var req dto.UpdateParticipantRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.participantSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// Deactivate 停用参与者
// POST /api/v1/participants/:id/deactivate
func (h *ParticipantHandler) Deactivate(c *gin.Context) {
	id := c.Param("id")
	callerID, ok := authorizeVia(c, h.groupSvc, h.participantSvc.GroupID, id)
	if !ok {
		return
	}

	if err := h.participantSvc.Deactivate(c.Request.Context(), id, callerID); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, nil)
}

// Reactivate 重新启用参与者
// POST /api/v1/participants/:id/reactivate
func (h *ParticipantHandler) Reactivate(c *gin.Context) {
	id := c.Param("id")
	callerID, ok := authorizeVia(c, h.groupSvc, h.participantSvc.GroupID, id)
	if !ok {
		return
	}

	if err := h.participantSvc.Reactivate(c.Request.Context(), id, callerID); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, nil)
}
