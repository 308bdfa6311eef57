package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/projectnuraya/tilawah-tracker/internal/model"
	"github.com/projectnuraya/tilawah-tracker/internal/repository"
	"github.com/projectnuraya/tilawah-tracker/internal/rotation"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
type ExportService interface {
	// ExportPeriod 导出单个周期的进度
	ExportPeriod(ctx context.Context, periodID string) (*bytes.Buffer, string, error)
	// ExportGroup 导出组的轮换历史：参与者为行、周期为列
	ExportGroup(ctx context.Context, groupID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

var statusLabels = map[string]string{
	string(rotation.StatusPending):   "Belum",
	string(rotation.StatusCompleted): "Selesai",
	string(rotation.StatusMissed):    "Terlewat",
}

// ═══════════════════════════════════════════════════════════
// ExportPeriod 单周期进度
// ═══════════════════════════════════════════════════════════
//
// 表头：| Juz | Nama | Status | Streak |，按槽位排序

func (s *exportService) ExportPeriod(ctx context.Context, periodID string) (*bytes.Buffer, string, error) {
	period, err := s.repo.Period.GetByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrPeriodNotFound
		}
		s.logger.Error("查询周期失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, "", err
	}
	list, err := s.repo.Assignment.ListByPeriod(ctx, periodID)
	if err != nil {
		s.logger.Error("查询周期分配失败", zap.String("period_id", periodID), zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("Periode %d", period.PeriodNumber)
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 28)
	f.SetColWidth(sheet, "C", "D", 12)

	headerStyle := newHeaderStyle(f)

	f.SetCellValue(sheet, "A1", fmt.Sprintf("Periode %d: %s - %s",
		period.PeriodNumber, formatDate(period.StartDate), formatDate(period.EndDate)))
	f.MergeCell(sheet, "A1", "D1")

	headers := []string{"Juz", "Nama", "Status", "Streak"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, "A2", "D2", headerStyle)

	var counts repository.StatusCounts
	for i, a := range list {
		row := i + 3
		name := ""
		if a.Participant != nil {
			name = a.Participant.Name
		}
		f.SetCellValue(sheet, cellName(1, row), a.SlotNumber)
		f.SetCellValue(sheet, cellName(2, row), name)
		f.SetCellValue(sheet, cellName(3, row), statusLabels[a.Status])
		f.SetCellValue(sheet, cellName(4, row), a.MissedStreak)
		counts.Add(a.Status, 1)
	}

	// 汇总行
	sumRow := len(list) + 4
	f.SetCellValue(sheet, cellName(2, sumRow), "Selesai / Belum / Terlewat")
	f.SetCellValue(sheet, cellName(3, sumRow), fmt.Sprintf("%d / %d / %d", counts.Completed, counts.Pending, counts.Missed))

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("periode-%d-%s.xlsx", period.PeriodNumber, formatDate(period.StartDate))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportGroup 轮换历史矩阵
// ═══════════════════════════════════════════════════════════
//
// 表头：| Nama | P1 | P2 | …，单元格为 "Juz N (状态)"，周期按编号升序

func (s *exportService) ExportGroup(ctx context.Context, groupID string) (*bytes.Buffer, string, error) {
	group, err := s.repo.Group.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrGroupNotFound
		}
		s.logger.Error("查询组失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, "", err
	}

	participants, err := s.repo.Participant.ListByGroup(ctx, groupID, true)
	if err != nil {
		s.logger.Error("列出参与者失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, "", err
	}
	periods, err := s.repo.Period.ListByGroup(ctx, groupID, "", 0)
	if err != nil {
		s.logger.Error("列出周期失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, "", err
	}

	// ListByGroup 为倒序，表格按编号升序
	ordered := make([]model.Period, len(periods))
	for i := range periods {
		ordered[len(periods)-1-i] = periods[i]
	}

	// participantID → periodID → assignment
	cells := make(map[string]map[string]model.Assignment, len(participants))
	for _, p := range ordered {
		list, err := s.repo.Assignment.ListByPeriod(ctx, p.PeriodID)
		if err != nil {
			s.logger.Error("查询周期分配失败", zap.String("period_id", p.PeriodID), zap.Error(err))
			return nil, "", err
		}
		for _, a := range list {
			if cells[a.ParticipantID] == nil {
				cells[a.ParticipantID] = make(map[string]model.Assignment)
			}
			cells[a.ParticipantID][p.PeriodID] = a
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Riwayat"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheet, "A", "A", 28)
	if len(ordered) > 0 {
		last, _ := excelize.ColumnNumberToName(len(ordered) + 1)
		f.SetColWidth(sheet, "B", last, 18)
	}

	f.SetCellValue(sheet, "A1", "Nama")
	for i, p := range ordered {
		f.SetCellValue(sheet, cellName(i+2, 1), fmt.Sprintf("P%d (%s)", p.PeriodNumber, formatDate(p.StartDate)))
	}
	lastHeader := cellName(len(ordered)+1, 1)
	f.SetCellStyle(sheet, "A1", lastHeader, newHeaderStyle(f))

	for r, participant := range participants {
		row := r + 2
		f.SetCellValue(sheet, cellName(1, row), participant.Name)
		for c, p := range ordered {
			a, ok := cells[participant.ParticipantID][p.PeriodID]
			if !ok {
				continue
			}
			f.SetCellValue(sheet, cellName(c+2, row), fmt.Sprintf("Juz %d (%s)", a.SlotNumber, statusLabels[a.Status]))
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, fmt.Sprintf("riwayat-%s.xlsx", group.GroupID), nil
}

// ── 内部辅助方法 ──

func newHeaderStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	return style
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
