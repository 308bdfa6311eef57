package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/projectnuraya/tilawah-tracker/internal/dto"
	"github.com/projectnuraya/tilawah-tracker/internal/service"
	"github.com/projectnuraya/tilawah-tracker/pkg/response"
)

// ShareHandler WhatsApp 分享 HTTP 处理器
type ShareHandler struct {
	shareSvc  service.ShareService
	periodSvc service.PeriodService
	groupSvc  service.GroupService
}

// NewShareHandler 创建 ShareHandler
func NewShareHandler(shareSvc service.ShareService, periodSvc service.PeriodService, groupSvc service.GroupService) *ShareHandler {
	return &ShareHandler{shareSvc: shareSvc, periodSvc: periodSvc, groupSvc: groupSvc}
}

// ShareText 生成周期分享文本，请求体可选
// POST /api/v1/periods/:id/share
func (h *ShareHandler) ShareText(c *gin.Context) {
	id := c.Param("id")
	if _, ok := authorizeVia(c, h.groupSvc, h.periodSvc.GroupID, id); !ok {
		return
	}
	var req dto.ShareRequest
	if c.Request.ContentLength > 0 {
		if !bindJSON(c, &req) {
			return
		}
	}

	result, err := h.shareSvc.ShareText(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}

// Reminders pending 参与者的提醒链接
// GET /api/v1/periods/:id/reminders
func (h *ShareHandler) Reminders(c *gin.Context) {
	id := c.Param("id")
	if _, ok := authorizeVia(c, h.groupSvc, h.periodSvc.GroupID, id); !ok {
		return
	}

	result, err := h.shareSvc.Reminders(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, result)
}
