package service

import (
	"bytes"
	"context"
	"fmt"

	"eduverse_backend/internal/util"

	"github.com/xuri/excelize/v2"
)

const progressSheet = "Progress"

// ReportService 导出课程学习进度
type ReportService struct {
	Progress *ProgressService
}

func NewReportService(progress *ProgressService) *ReportService {
	return &ReportService{Progress: progress}
}

var progressHeader = []interface{}{"Student ID", "Name", "Email", "Completed Modules", "Total Modules", "Progress (%)", "Completed", "Enrolled At", "Completed At"}

// ExportCourseProgress 生成 xlsx，每个学生一行
func (s *ReportService) ExportCourseProgress(ctx context.Context, courseID string) (*bytes.Buffer, error) {
	rows, err := s.Progress.ListCourseProgress(ctx, courseID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", progressSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(progressSheet, "A1", &progressHeader); err != nil {
		return nil, err
	}

	for i, r := range rows {
		completedAt := ""
		if r.CompletedAt != nil {
			completedAt = r.CompletedAt.Format(util.TimeFormat)
		}
		values := []interface{}{
			r.StudentID, r.StudentName, r.Email,
			r.CompletedModules, r.TotalModules, r.Progress,
			r.Completed, r.EnrolledAt.Format(util.TimeFormat), completedAt,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(progressSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f.WriteToBuffer()
}
