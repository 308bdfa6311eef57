package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/projectnuraya/tilawah-tracker/internal/service"
	"github.com/projectnuraya/tilawah-tracker/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
	periodSvc service.PeriodService
	groupSvc  service.GroupService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, periodSvc service.PeriodService, groupSvc service.GroupService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, periodSvc: periodSvc, groupSvc: groupSvc}
}

// ExportPeriod 导出单个周期
// GET /api/v1/periods/:id/export
func (h *ExportHandler) ExportPeriod(c *gin.Context) {
	id := c.Param("id")
	if _, ok := authorizeVia(c, h.groupSvc, h.periodSvc.GroupID, id); !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportPeriod(c.Request.Context(), id)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	writeXLSX(c, buf, filename)
}

// ExportGroup 导出组的轮换历史
// GET /api/v1/groups/:id/export
func (h *ExportHandler) ExportGroup(c *gin.Context) {
	groupID := c.Param("id")
	if _, ok := authorizeGroup(c, h.groupSvc, groupID); !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportGroup(c.Request.Context(), groupID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	writeXLSX(c, buf, filename)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrExportGenerateFail) {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}
	handleError(c, err)
}

// writeXLSX 设置下载响应头并写出文件
func writeXLSX(c *gin.Context, buf *bytes.Buffer, filename string) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
