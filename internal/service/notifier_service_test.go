package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mochila-app/backpack-api/internal/models"
	"github.com/mochila-app/backpack-api/pkg/jobs"
)

type notifierRepoStub struct {
	targets   []models.NotificationTarget
	schedules map[string]models.WeeklySchedule
	vacations map[string][]string
}

func (s *notifierRepoStub) ListNotifiable(ctx context.Context) ([]models.NotificationTarget, error) {
	return s.targets, nil
}

func (s *notifierRepoStub) GetSchedule(ctx context.Context, profileID string) (models.WeeklySchedule, error) {
	return s.schedules[profileID], nil
}

func (s *notifierRepoStub) ListVacations(ctx context.Context, profileID string) ([]string, error) {
	return s.vacations[profileID], nil
}

type notificationWriterStub struct {
	created []models.Notification
}

func (s *notificationWriterStub) Create(ctx context.Context, notification *models.Notification) error {
	s.created = append(s.created, *notification)
	return nil
}

type enqueuerStub struct {
	jobs []jobs.Job
}

func (s *enqueuerStub) Enqueue(job jobs.Job) error {
	s.jobs = append(s.jobs, job)
	return nil
}

func TestNotifierSweepRaisesOnlyActionableReminders(t *testing.T) {
	repo := &notifierRepoStub{
		targets: []models.NotificationTarget{
			{OwnerID: "u1", ProfileID: "p1", ProfileName: "Ana"},
			{OwnerID: "u1", ProfileID: "p2", ProfileName: "Leo"},
			{OwnerID: "u2", ProfileID: "p3", ProfileName: "Mia"},
		},
		schedules: map[string]models.WeeklySchedule{
			"p1": {"Monday": "Math, History"},
			"p2": {},
			"p3": {"Monday": "Art"},
		},
		vacations: map[string][]string{
			"p3": {"2026-03-02"},
		},
	}
	queue := &enqueuerStub{}
	svc := NewNotifierService(repo, &notificationWriterStub{}, queue, NotifierConfig{}, nil).
		WithClock(func() time.Time { return mondayAt(9) })

	raised, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, raised)
	require.Len(t, queue.jobs, 1)

	notification, ok := queue.jobs[0].Payload.(models.Notification)
	require.True(t, ok)
	assert.Equal(t, "p1", notification.ProfileID)
	assert.Equal(t, "2026-03-02", notification.TargetDate)
	assert.Contains(t, notification.Body, "Math, History")
	assert.Contains(t, notification.Body, "today")
}

func TestNotifierSweepAfterCutoffTargetsTomorrow(t *testing.T) {
	repo := &notifierRepoStub{
		targets: []models.NotificationTarget{{OwnerID: "u1", ProfileID: "p1", ProfileName: "Ana"}},
		schedules: map[string]models.WeeklySchedule{
			"p1": {"Tuesday": "Biology"},
		},
	}
	queue := &enqueuerStub{}
	svc := NewNotifierService(repo, &notificationWriterStub{}, queue, NotifierConfig{}, nil).
		WithClock(func() time.Time { return mondayAt(16) })

	raised, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, raised)

	notification := queue.jobs[0].Payload.(models.Notification)
	assert.Equal(t, "2026-03-03", notification.TargetDate)
	assert.Contains(t, notification.Body, "tomorrow")
}

func TestNotifierDispatchPersistsAndPostsWebhook(t *testing.T) {
	var received models.Notification
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	writer := &notificationWriterStub{}
	svc := NewNotifierService(&notifierRepoStub{}, writer, &enqueuerStub{}, NotifierConfig{WebhookURL: server.URL}, nil)

	notification := models.Notification{ID: "n1", OwnerID: "u1", ProfileID: "p1", ProfileName: "Ana", TargetDate: "2026-03-02"}
	err := svc.Dispatch(context.Background(), jobs.Job{ID: "n1", Type: "backpack-reminder", Payload: notification})
	require.NoError(t, err)

	require.Len(t, writer.created, 1)
	assert.Equal(t, "n1", received.ID)
}

func TestNotifierDispatchWebhookFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewNotifierService(&notifierRepoStub{}, &notificationWriterStub{}, &enqueuerStub{}, NotifierConfig{WebhookURL: server.URL}, nil)

	err := svc.Dispatch(context.Background(), jobs.Job{Payload: models.Notification{ID: "n1"}})
	require.Error(t, err)
}

func TestNotifierDispatchWithoutWebhook(t *testing.T) {
	writer := &notificationWriterStub{}
	svc := NewNotifierService(&notifierRepoStub{}, writer, &enqueuerStub{}, NotifierConfig{}, nil)

	err := svc.Dispatch(context.Background(), jobs.Job{Payload: models.Notification{ID: "n1"}})
	require.NoError(t, err)
	assert.Len(t, writer.created, 1)
}
