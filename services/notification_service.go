package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"fitgenius/config"
	"fitgenius/models"
	"fitgenius/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
)

// Notifier delivers a reminder to the user.
type Notifier interface {
	Notify(ctx context.Context, reminder *models.Reminder) error
}

type snsPublishAPI interface {
	Publish(ctx context.Context, params *awssns.PublishInput, optFns ...func(*awssns.Options)) (*awssns.PublishOutput, error)
}

type snsNotifier struct {
	client   snsPublishAPI
	topicARN string
}

// NewSNSNotifier publishes reminders to the configured SNS topic.
func NewSNSNotifier(ctx context.Context, cfg config.NotificationConfig) (Notifier, error) {
	if cfg.TopicARN == "" {
		return nil, fmt.Errorf("%w: notifications.topic_arn is empty", ErrInvalidInput)
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config for SNS: %w", err)
	}
	return &snsNotifier{client: awssns.NewFromConfig(awsCfg), topicARN: cfg.TopicARN}, nil
}

func (n *snsNotifier) Notify(ctx context.Context, reminder *models.Reminder) error {
	msg := map[string]any{
		"default": reminder.Body,
		"GCM": map[string]any{
			"notification": map[string]string{
				"title": reminder.Title,
				"body":  reminder.Body,
			},
			"data": map[string]any{
				"reminder_id": reminder.ID,
				"profile_id":  reminder.ProfileID,
				"day_number":  reminder.DayNumber,
			},
		},
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode reminder %s: %w", reminder.ID, err)
	}
	_, err = n.client.Publish(ctx, &awssns.PublishInput{
		TopicArn:         aws.String(n.topicARN),
		Subject:          aws.String(reminder.Title),
		Message:          aws.String(string(raw)),
		MessageStructure: aws.String("json"),
	})
	return err
}

type logNotifier struct{}

// NewLogNotifier only logs reminders; used when notifications are disabled.
func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) Notify(_ context.Context, reminder *models.Reminder) error {
	log.Printf("INFO: [Notifier] Reminder %s for profile ID %d: %s - %s", reminder.ID, reminder.ProfileID, reminder.Title, reminder.Body)
	return nil
}

// NotificationService schedules and dispatches training reminders.
type NotificationService interface {
	ScheduleTrainingReminders(ctx context.Context, plan *models.Plan, now time.Time) ([]*models.Reminder, error)
	ListReminders(profileID uint) ([]*models.Reminder, error)
	CancelAll(profileID uint) error
	DispatchDue(ctx context.Context, now time.Time) (int, error)
	Run(ctx context.Context, interval time.Duration)
}

type notificationService struct {
	reminderRepo repository.ReminderRepository
	notifier     Notifier
	hour         int
}

// NewNotificationService creates a new instance of NotificationService.
func NewNotificationService(reminderRepo repository.ReminderRepository, notifier Notifier, hour int) NotificationService {
	if hour < 0 || hour > 23 {
		hour = 19
	}
	return &notificationService{
		reminderRepo: reminderRepo,
		notifier:     notifier,
		hour:         hour,
	}
}

func reminderContent(day *models.Day) (string, string) {
	title := fmt.Sprintf("Today's training: %s", day.Focus)
	if count := len(day.Exercises); count > 0 {
		return title, fmt.Sprintf("%d exercises planned, remember to train on time", count)
	}
	return title, "Remember to train"
}

// ScheduleTrainingReminders replaces the profile's reminders with one per
// training day of the current cycle. Fire times already past are skipped.
func (s *notificationService) ScheduleTrainingReminders(ctx context.Context, plan *models.Plan, now time.Time) ([]*models.Reminder, error) {
	if plan == nil {
		return nil, fmt.Errorf("%w: plan is required", ErrPlanNotFound)
	}
	if err := s.CancelAll(plan.ProfileID); err != nil {
		return nil, err
	}

	var reminders []*models.Reminder
	for _, day := range plan.SortedDays() {
		if day.IsRestDay {
			continue
		}
		date := plan.DateForDay(day.DayNumber, now)
		fireAt := time.Date(date.Year(), date.Month(), date.Day(), s.hour, 0, 0, 0, date.Location())
		if fireAt.Before(now) {
			continue
		}
		title, body := reminderContent(day)
		reminders = append(reminders, &models.Reminder{
			ID:        models.ReminderID(fireAt),
			ProfileID: plan.ProfileID,
			DayNumber: day.DayNumber,
			Title:     title,
			Body:      body,
			FireAt:    fireAt,
			Status:    models.ReminderStatusPending,
		})
	}
	if err := s.reminderRepo.UpsertReminders(reminders); err != nil {
		return nil, err
	}
	log.Printf("INFO: [NotificationService] Scheduled %d reminders for profile ID %d.", len(reminders), plan.ProfileID)
	return reminders, nil
}

func (s *notificationService) ListReminders(profileID uint) ([]*models.Reminder, error) {
	return s.reminderRepo.ListByProfile(profileID)
}

func (s *notificationService) CancelAll(profileID uint) error {
	return s.reminderRepo.DeleteByProfile(profileID)
}

// DispatchDue sends every pending reminder whose fire time has passed and
// returns how many were delivered.
func (s *notificationService) DispatchDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.reminderRepo.ListDue(now)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, reminder := range due {
		if err := s.notifier.Notify(ctx, reminder); err != nil {
			log.Printf("ERROR: [NotificationService] Failed to deliver reminder %s: %v", reminder.ID, err)
			reminder.Status = models.ReminderStatusFailed
		} else {
			sentAt := now
			reminder.Status = models.ReminderStatusSent
			reminder.SentAt = &sentAt
			sent++
		}
		if err := s.reminderRepo.UpdateStatus(reminder); err != nil {
			log.Printf("WARN: [NotificationService] Failed to record status of reminder %s: %v", reminder.ID, err)
		}
	}
	return sent, nil
}

// Run dispatches due reminders every interval until ctx is cancelled.
func (s *notificationService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Printf("INFO: [NotificationService] Dispatcher started (interval %s).", interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("INFO: [NotificationService] Dispatcher stopped.")
			return
		case now := <-ticker.C:
			if n, err := s.DispatchDue(ctx, now); err != nil {
				log.Printf("ERROR: [NotificationService] Dispatch failed: %v", err)
			} else if n > 0 {
				log.Printf("INFO: [NotificationService] Delivered %d reminders.", n)
			}
		}
	}
}
