package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mochila-app/backpack-api/internal/models"
	appErrors "github.com/mochila-app/backpack-api/pkg/errors"
	"github.com/mochila-app/backpack-api/pkg/export"
)

type exportRepository interface {
	Get(ctx context.Context, ownerID, profileID string) (*models.Profile, error)
	GetSchedule(ctx context.Context, profileID string) (models.WeeklySchedule, error)
	ListVacations(ctx context.Context, profileID string) ([]string, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportService renders a profile's schedule as CSV or PDF.
type ExportService struct {
	repo    exportRepository
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	enabled bool
	logger  *zap.Logger
}

// NewExportService constructs an ExportService instance.
func NewExportService(repo exportRepository, enabled bool, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		repo:    repo,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		enabled: enabled,
		logger:  logger,
	}
}

// Export renders the schedule in the requested format ("csv" or "pdf").
func (s *ExportService) Export(ctx context.Context, ownerID, profileID, format string) (*ExportFile, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "schedule export is disabled")
	}

	profile, err := s.repo.Get(ctx, ownerID, profileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrProfileNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	schedule, err := s.repo.GetSchedule(ctx, profileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	vacations, err := s.repo.ListVacations(ctx, profileID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vacations")
	}

	dataset := buildScheduleDataset(schedule)
	slug := profileSlug(profile.Name)

	switch strings.ToLower(format) {
	case "csv":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("schedule-%s.csv", slug),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case "pdf":
		title := fmt.Sprintf("Weekly schedule - %s", profile.Name)
		if len(vacations) > 0 {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Day":      "Vacations",
				"Subjects": strings.Join(vacations, ", "),
			})
		}
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("schedule-%s.pdf", slug),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

// buildScheduleDataset lays out the week Monday through Sunday, one row per
// day, blank for days without classes.
func buildScheduleDataset(schedule models.WeeklySchedule) export.Dataset {
	rows := make([]map[string]string, 0, len(models.WeekdayNames))
	for _, day := range models.WeekdayNames {
		rows = append(rows, map[string]string{
			"Day":      day,
			"Subjects": schedule[day],
		})
	}
	return export.Dataset{Headers: []string{"Day", "Subjects"}, Rows: rows}
}

func profileSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	if slug == "" {
		slug = "profile"
	}
	return slug
}
