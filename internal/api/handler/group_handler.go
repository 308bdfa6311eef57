package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/projectnuraya/tilawah-tracker/internal/dto"
	"github.com/projectnuraya/tilawah-tracker/internal/service"
	"github.com/projectnuraya/tilawah-tracker/pkg/response"
)

// GroupHandler 组管理 HTTP 处理器
type GroupHandler struct {
	groupSvc service.GroupService
}

// NewGroupHandler 创建 GroupHandler
func NewGroupHandler(groupSvc service.GroupService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc}
}

// Create 创建组，创建者自动成为协调员
// POST /api/v1/groups
func (h *GroupHandler) Create(c *gin.Context) {
	callerID, ok := MustGetCoordinatorID(c)
	if !ok {
		return
	}
	var req dto.CreateGroupRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.groupSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Created(c, result)
}

// List 当前协调员管理的组
// GET /api/v1/groups
func (h *GroupHandler) List(c *gin.Context) {
	callerID, ok := MustGetCoordinatorID(c)
	if !ok {
		return
	}

	result, err := h.groupSvc.ListMine(c.Request.Context(), callerID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// Get 组详情
// GET /api/v1/groups/:id
func (h *GroupHandler) Get(c *gin.Context) {
	groupID := c.Param("id")
	if _, ok := authorizeGroup(c, h.groupSvc, groupID); !ok {
		return
	}

	result, err := h.groupSvc.Get(c.Request.Context(), groupID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// Update 修改组名（乐观锁）
// PUT /api/v1/groups/:id
func (h *GroupHandler) Update(c *gin.Context) {
	groupID := c.Param("id")
	callerID, ok := authorizeGroup(c, h.groupSvc, groupID)
	if !ok {
		return
	}
	var req dto.UpdateGroupRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.groupSvc.Update(c.Request.Context(), groupID, &req, callerID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// Delete 删除组及其全部数据
// DELETE /api/v1/groups/:id
func (h *GroupHandler) Delete(c *gin.Context) {
	groupID := c.Param("id")
	callerID, ok := authorizeGroup(c, h.groupSvc, groupID)
	if !ok {
		return
	}

	if err := h.groupSvc.Delete(c.Request.Context(), groupID, callerID); err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, nil)
}
