package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mochila-app/backpack-api/internal/models"
	appErrors "github.com/mochila-app/backpack-api/pkg/errors"
)

type exportRepoStub struct {
	profile   *models.Profile
	schedule  models.WeeklySchedule
	vacations []string
}

func (s *exportRepoStub) Get(ctx context.Context, ownerID, profileID string) (*models.Profile, error) {
	if s.profile == nil || s.profile.ID != profileID || s.profile.OwnerID != ownerID {
		return nil, sql.ErrNoRows
	}
	return s.profile, nil
}

func (s *exportRepoStub) GetSchedule(ctx context.Context, profileID string) (models.WeeklySchedule, error) {
	return s.schedule, nil
}

func (s *exportRepoStub) ListVacations(ctx context.Context, profileID string) ([]string, error) {
	return s.vacations, nil
}

func newExportStub() *exportRepoStub {
	return &exportRepoStub{
		profile: &models.Profile{ID: "p1", OwnerID: "u1", Name: "Ana María"},
		schedule: models.WeeklySchedule{
			"Monday": "Math, History",
			"Friday": "PE",
		},
		vacations: []string{"2026-04-10"},
	}
}

func TestExportCSVOrdersMondayToSunday(t *testing.T) {
	svc := NewExportService(newExportStub(), true, nil)

	file, err := svc.Export(context.Background(), "u1", "p1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "schedule-ana-mara.csv", file.Filename)

	lines := strings.Split(strings.TrimSpace(string(file.Content)), "\n")
	require.Len(t, lines, 8, "header plus seven weekdays")
	assert.Equal(t, "Day,Subjects", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Monday,"))
	assert.True(t, strings.HasPrefix(lines[7], "Sunday,"))
	assert.Contains(t, lines[1], "Math, History")
	assert.Equal(t, "Tuesday,", lines[2], "empty day renders blank")
}

func TestExportPDF(t *testing.T) {
	svc := NewExportService(newExportStub(), true, nil)

	file, err := svc.Export(context.Background(), "u1", "p1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc := NewExportService(newExportStub(), true, nil)

	_, err := svc.Export(context.Background(), "u1", "p1", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportDisabled(t *testing.T) {
	svc := NewExportService(newExportStub(), false, nil)

	_, err := svc.Export(context.Background(), "u1", "p1", "csv")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFeatureDisabled.Code, appErrors.FromError(err).Code)
}

func TestExportUnknownProfile(t *testing.T) {
	svc := NewExportService(&exportRepoStub{}, true, nil)

	_, err := svc.Export(context.Background(), "u1", "missing", "csv")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrProfileNotFound.Code, appErrors.FromError(err).Code)
}
