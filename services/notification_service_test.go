package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"fitgenius/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeSNSClient struct {
	inputs []*awssns.PublishInput
	err    error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *awssns.PublishInput, _ ...func(*awssns.Options)) (*awssns.PublishOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &awssns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

func TestNotificationService_ScheduleTrainingReminders(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("One reminder per training day", func(t *testing.T) {
		repo := new(MockReminderRepository)
		repo.On("DeleteByProfile", uint(1)).Return(nil).Once()
		repo.On("UpsertReminders", mock.AnythingOfType("[]*models.Reminder")).Return(nil).Once()
		svc := NewNotificationService(repo, new(MockNotifier), 19)

		reminders, err := svc.ScheduleTrainingReminders(ctx, testPlan(created), created.Add(8*time.Hour))

		require.NoError(t, err)
		require.Len(t, reminders, 2)
		assert.Equal(t, "training-2025-3-10", reminders[0].ID)
		assert.Equal(t, time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC), reminders[0].FireAt)
		assert.Equal(t, "Today's training: legs", reminders[0].Title)
		assert.Equal(t, "3 exercises planned, remember to train on time", reminders[0].Body)
		assert.Equal(t, models.ReminderStatusPending, reminders[0].Status)
		assert.Equal(t, "training-2025-3-11", reminders[1].ID)
		assert.Equal(t, 2, reminders[1].DayNumber)
		repo.AssertExpectations(t)
	})

	t.Run("Past fire times are skipped", func(t *testing.T) {
		repo := new(MockReminderRepository)
		repo.On("DeleteByProfile", uint(1)).Return(nil).Once()
		repo.On("UpsertReminders", mock.AnythingOfType("[]*models.Reminder")).Return(nil).Once()
		svc := NewNotificationService(repo, new(MockNotifier), 19)

		reminders, err := svc.ScheduleTrainingReminders(ctx, testPlan(created), created.Add(20*time.Hour))

		require.NoError(t, err)
		require.Len(t, reminders, 1)
		assert.Equal(t, "training-2025-3-11", reminders[0].ID)
	})

	t.Run("Invalid hour defaults to evening", func(t *testing.T) {
		repo := new(MockReminderRepository)
		repo.On("DeleteByProfile", uint(1)).Return(nil).Once()
		repo.On("UpsertReminders", mock.Anything).Return(nil).Once()
		svc := NewNotificationService(repo, new(MockNotifier), 31)

		reminders, err := svc.ScheduleTrainingReminders(ctx, testPlan(created), created)
		require.NoError(t, err)
		assert.Equal(t, 19, reminders[0].FireAt.Hour())
	})

	t.Run("Empty training day gets the generic body", func(t *testing.T) {
		repo := new(MockReminderRepository)
		repo.On("DeleteByProfile", uint(1)).Return(nil).Once()
		repo.On("UpsertReminders", mock.Anything).Return(nil).Once()
		plan := testPlan(created)
		plan.Days[1].Exercises = nil

		reminders, err := NewNotificationService(repo, new(MockNotifier), 7).ScheduleTrainingReminders(ctx, plan, created)
		require.NoError(t, err)
		assert.Equal(t, "Remember to train", reminders[1].Body)
	})

	t.Run("Nil plan", func(t *testing.T) {
		_, err := NewNotificationService(new(MockReminderRepository), new(MockNotifier), 19).ScheduleTrainingReminders(ctx, nil, created)
		assert.ErrorIs(t, err, ErrPlanNotFound)
	})
}

func TestNotificationService_DispatchDue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 19, 0, 30, 0, time.UTC)
	ok := &models.Reminder{ID: "training-2025-3-10", ProfileID: 1, Status: models.ReminderStatusPending}
	broken := &models.Reminder{ID: "training-2025-3-9", ProfileID: 2, Status: models.ReminderStatusPending}

	repo := new(MockReminderRepository)
	notifier := new(MockNotifier)
	repo.On("ListDue", now).Return([]*models.Reminder{ok, broken}, nil).Once()
	notifier.On("Notify", ctx, ok).Return(nil).Once()
	notifier.On("Notify", ctx, broken).Return(errors.New("endpoint disabled")).Once()
	repo.On("UpdateStatus", ok).Return(nil).Once()
	repo.On("UpdateStatus", broken).Return(nil).Once()

	sent, err := NewNotificationService(repo, notifier, 19).DispatchDue(ctx, now)

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, models.ReminderStatusSent, ok.Status)
	require.NotNil(t, ok.SentAt)
	assert.Equal(t, now, *ok.SentAt)
	assert.Equal(t, models.ReminderStatusFailed, broken.Status)
	assert.Nil(t, broken.SentAt)
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestNotificationService_RunStopsOnCancel(t *testing.T) {
	repo := new(MockReminderRepository)
	repo.On("ListDue", mock.Anything).Return([]*models.Reminder{}, nil)
	svc := NewNotificationService(repo, NewLogNotifier(), 19)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, 5*time.Millisecond)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}
}

func TestSNSNotifier_Notify(t *testing.T) {
	client := &fakeSNSClient{}
	notifier := &snsNotifier{client: client, topicARN: "arn:aws:sns:us-east-1:123456789012:training"}
	reminder := &models.Reminder{ID: "training-2025-3-10", ProfileID: 1, DayNumber: 1, Title: "Today's training: legs", Body: "3 exercises planned, remember to train on time"}

	require.NoError(t, notifier.Notify(context.Background(), reminder))

	require.Len(t, client.inputs, 1)
	input := client.inputs[0]
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:training", aws.ToString(input.TopicArn))
	assert.Equal(t, "json", aws.ToString(input.MessageStructure))
	assert.Equal(t, reminder.Title, aws.ToString(input.Subject))

	var msg struct {
		Default string `json:"default"`
		GCM     struct {
			Notification map[string]string `json:"notification"`
			Data         map[string]any    `json:"data"`
		} `json:"GCM"`
	}
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(input.Message)), &msg))
	assert.Equal(t, reminder.Body, msg.Default)
	assert.Equal(t, reminder.Title, msg.GCM.Notification["title"])
	assert.Equal(t, "training-2025-3-10", msg.GCM.Data["reminder_id"])

	client.err = errors.New("throttled")
	assert.Error(t, notifier.Notify(context.Background(), reminder))
}
