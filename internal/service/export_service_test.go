package service

import (
	"context"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/projectnuraya/tilawah-tracker/internal/rotation"
)

// ── 测试辅助 ──

func setupTestExportService() (*memStore, ExportService, PeriodService) {
	store := newMemStore()
	repo := newMemRepository(store)
	periods := NewPeriodService(testConfig(), repo, fixedClock{t: testNow}, nil, nil, zap.NewNop())
	return store, NewExportService(repo, zap.NewNop()), periods
}

// ── ExportPeriod 测试 ──

func TestExportService_ExportPeriod(t *testing.T) {
	store, svc, periods := setupTestExportService()
	g := store.seedGroup("Grup Ekspor")
	ps := store.seedParticipants(g.GroupID, 3)
	opened := openPeriod(t, periods, g.GroupID, testSunday)
	store.setAssignmentStatus(opened.PeriodID, ps[1].ParticipantID, rotation.StatusCompleted)

	buf, filename, err := svc.ExportPeriod(context.Background(), opened.PeriodID)
	if err != nil {
		t.Fatalf("导出周期失败: %v", err)
	}
	if filename != "periode-1-2025-01-05.xlsx" {
		t.Errorf("文件名不符合预期: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出文件无法打开: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Periode 1")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	// 标题 + 表头 + 3 行数据 + 空行 + 汇总
	if len(rows) != 7 {
		t.Fatalf("期望 7 行，实际=%d", len(rows))
	}
	if rows[1][0] != "Juz" || rows[2][1] != "Peserta 01" {
		t.Errorf("表头或首行不符合预期: %v / %v", rows[1], rows[2])
	}
	if rows[3][2] != "Selesai" {
		t.Errorf("期望第二名参与者状态=Selesai，实际=%s", rows[3][2])
	}
	if got := rows[6][2]; got != "1 / 2 / 0" {
		t.Errorf("汇总不符合预期: %s", got)
	}
}

func TestExportService_ExportPeriod_NotFound(t *testing.T) {
	_, svc, _ := setupTestExportService()
	if _, _, err := svc.ExportPeriod(context.Background(), "missing"); !errors.Is(err, ErrPeriodNotFound) {
		t.Errorf("期望 ErrPeriodNotFound，实际: %v", err)
	}
}

// ── ExportGroup 测试 ──

func TestExportService_ExportGroup(t *testing.T) {
	store, svc, periods := setupTestExportService()
	g := store.seedGroup("Grup Riwayat")
	store.seedParticipants(g.GroupID, 2)

	first := openPeriod(t, periods, g.GroupID, testSunday)
	lockPeriod(t, periods, first.PeriodID)
	openPeriod(t, periods, g.GroupID, "2025-01-12")

	buf, _, err := svc.ExportGroup(context.Background(), g.GroupID)
	if err != nil {
		t.Fatalf("导出历史失败: %v", err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出文件无法打开: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Riwayat")
	if err != nil {
		t.Fatalf("读取工作表失败: %v", err)
	}
	if len(rows) != 3 || len(rows[0]) != 3 {
		t.Fatalf("期望 3x3 表格，实际=%v", rows)
	}
	if rows[0][1] != "P1 (2025-01-05)" {
		t.Errorf("周期应按编号升序，实际表头=%v", rows[0])
	}
	if rows[1][1] != "Juz 1 (Terlewat)" || rows[1][2] != "Juz 1 (Belum)" {
		t.Errorf("第一名参与者历史不符合预期: %v", rows[1])
	}

	if _, _, err := svc.ExportGroup(context.Background(), "missing"); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("期望 ErrGroupNotFound，实际: %v", err)
	}
}
