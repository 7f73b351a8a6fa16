package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/exercise-service/internal/models"
)

const (
	summarySheet  = "Summary"
	attemptsSheet = "Attempts"
	timeLayout    = "2006-01-02 15:04:05"
)

// SessionLoader resolves a session with its attempts.
type SessionLoader interface {
	Get(ctx context.Context, sessionID uint) (*models.GameSession, error)
}

type ExportService interface {
	// ExportSessionAttempts renders a session and its attempts as an xlsx
	// workbook.
	ExportSessionAttempts(ctx context.Context, sessionID uint) ([]byte, error)
}

type exportService struct {
	sessions SessionLoader
	logger   *ServiceLogger
}

func NewExportService(sessions SessionLoader, logger *slog.Logger) ExportService {
	return &exportService{
		sessions: sessions,
		logger:   NewServiceLogger(logger, LogConfig{Service: "exercise-service", Component: "export"}),
	}
}

func (s *exportService) ExportSessionAttempts(ctx context.Context, sessionID uint) (data []byte, err error) {
	op := s.logger.WithOperation(ctx, "export_session_attempts", "")
	defer func() { op.LogResult(strconv.FormatUint(uint64(sessionID), 10), "session", err) }()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	index, err := f.NewSheet(attemptsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel style: %w", err)
	}

	if err := writeSummary(f, session, headerStyle); err != nil {
		return nil, err
	}
	if err := writeAttempts(f, session.Attempts, headerStyle); err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, session *models.GameSession, headerStyle int) error {
	completedAt := ""
	if session.CompletedAt != nil {
		completedAt = session.CompletedAt.Format(timeLayout)
	}
	var nextDifficulty interface{} = ""
	if session.NextDifficulty != nil {
		nextDifficulty = *session.NextDifficulty
	}

	rows := [][]interface{}{
		{"Session ID", session.ID},
		{"User ID", session.UserID},
		{"Content ID", session.ContentID},
		{"Status", string(session.Status)},
		{"Started At", session.StartedAt.Format(timeLayout)},
		{"Completed At", completedAt},
		{"Attempts", len(session.Attempts)},
		{"Max Attempts", session.MaxAttempts},
		{"Correct Attempts", session.CorrectAttempts()},
		{"Score (%)", session.Score},
		{"Difficulty", session.Difficulty},
		{"Next Difficulty", nextDifficulty},
	}

	for i, row := range rows {
		if err := writeRow(f, summarySheet, i+1, row); err != nil {
			return err
		}
		label, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetCellStyle(summarySheet, label, label, headerStyle); err != nil {
			return fmt.Errorf("failed to style Excel cell: %w", err)
		}
	}
	return nil
}

func writeAttempts(f *excelize.File, attempts []models.Attempt, headerStyle int) error {
	headers := []interface{}{
		"Attempt", "Submitted At", "Correct", "Score", "Max Score", "Percentage", "Answer", "Feedback",
	}
	if err := writeRow(f, attemptsSheet, 1, headers); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(attemptsSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style Excel header: %w", err)
	}

	for i, attempt := range attempts {
		feedback := ""
		if attempt.Feedback != nil {
			feedback = *attempt.Feedback
		}
		row := []interface{}{
			attempt.Number,
			attempt.SubmittedAt.Format(timeLayout),
			attempt.Correct,
			attempt.Score,
			attempt.MaxScore,
			attempt.Percentage,
			string(attempt.Answer),
			feedback,
		}
		if err := writeRow(f, attemptsSheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write Excel row %d: %w", rowNum, err)
	}
	return nil
}
