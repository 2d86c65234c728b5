package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/money"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/core/notification"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/repositories"
)

// ReminderStats summarises one reminder run
type ReminderStats struct {
	Users       int `json:"users"`
	DueSent     int `json:"due_sent"`
	OverdueSent int `json:"overdue_sent"`
	Failed      int `json:"failed"`
	PayablesDue int `json:"payables_due"`
}

func (s *ReminderStats) add(o ReminderStats) {
	s.DueSent += o.DueSent
	s.OverdueSent += o.OverdueSent
	s.Failed += o.Failed
	s.PayablesDue += o.PayablesDue
}

type ReminderService struct {
	reminders   repositories.ReminderRepo
	receivables repositories.ReceivableRepo
	payables    repositories.PayableRepo
	notifier    *notification.Service
	location    *time.Location
	now         func() time.Time
}

// NewReminderService sends reminders at each user's preferred hour in loc.
func NewReminderService(db *gorm.DB, notifier *notification.Service, loc *time.Location) *ReminderService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderService{
		reminders:   repositories.NewReminderRepo(db),
		receivables: repositories.NewReceivableRepo(db),
		payables:    repositories.NewPayableRepo(db),
		notifier:    notifier,
		location:    loc,
		now:         time.Now,
	}
}

func (s *ReminderService) CreateTemplate(ctx context.Context, userID string, req *models.ReminderRequest) (*models.PaymentReminder, error) {
	uid, err := parseID(userID)
	if err != nil {
		return nil, err
	}
	reminder := &models.PaymentReminder{UserID: uid, IsActive: true}
	applyReminder(reminder, req)
	if err := s.reminders.Create(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	return reminder, nil
}

func (s *ReminderService) Templates(ctx context.Context, userID string) ([]models.PaymentReminder, error) {
	reminders, err := s.reminders.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

func (s *ReminderService) UpdateTemplate(ctx context.Context, userID, id string, req *models.ReminderRequest) (*models.PaymentReminder, error) {
	reminder, err := s.reminders.GetByID(ctx, userID, id)
	if err != nil {
		return nil, notFound("reminder", err)
	}
	applyReminder(reminder, req)
	if err := s.reminders.Update(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}
	return reminder, nil
}

func (s *ReminderService) DeleteTemplate(ctx context.Context, userID, id string) error {
	if err := s.reminders.Delete(ctx, userID, id); err != nil {
		return notFound("reminder", err)
	}
	return nil
}

func applyReminder(reminder *models.PaymentReminder, req *models.ReminderRequest) {
	reminder.Name = strings.TrimSpace(req.Name)
	reminder.Message = req.Message
	reminder.Days = req.Days
	reminder.ReminderType = req.ReminderType
	if reminder.ReminderType == "" {
		reminder.ReminderType = models.ReminderDueDate
	}
	if req.IsActive != nil {
		reminder.IsActive = *req.IsActive
	}
}

// Config returns the user's stored config or the defaults.
func (s *ReminderService) Config(ctx context.Context, userID string) (*models.AutoReminderConfig, error) {
	config, err := s.reminders.GetConfig(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		uid, err := parseID(userID)
		if err != nil {
			return nil, err
		}
		def := models.DefaultReminderConfig(uid)
		return &def, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reminder config: %w", err)
	}
	return config, nil
}

func (s *ReminderService) UpdateConfig(ctx context.Context, userID string, req *models.ReminderConfigRequest) (*models.AutoReminderConfig, error) {
	config, err := s.Config(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.EnableDueReminders != nil {
		config.EnableDueReminders = *req.EnableDueReminders
	}
	if req.EnableOverdueReminders != nil {
		config.EnableOverdueReminders = *req.EnableOverdueReminders
	}
	if req.IsActive != nil {
		config.IsActive = *req.IsActive
	}
	if req.DaysBeforeDue != "" {
		if len(models.ParseDays(req.DaysBeforeDue)) == 0 {
			return nil, invalid("days_before_due has no valid day")
		}
		config.DaysBeforeDue = req.DaysBeforeDue
	}
	if req.DaysAfterDue != "" {
		if len(models.ParseDays(req.DaysAfterDue)) == 0 {
			return nil, invalid("days_after_due has no valid day")
		}
		config.DaysAfterDue = req.DaysAfterDue
	}
	if req.PreferredHour != nil {
		config.PreferredHour = *req.PreferredHour
	}

	if err := s.reminders.SaveConfig(ctx, config); err != nil {
		return nil, fmt.Errorf("failed to save reminder config: %w", err)
	}
	return config, nil
}

// Run is the hourly job. It handles every user whose preferred hour is the
// current hour: stored configs plus users with open receivables and no config.
func (s *ReminderService) Run(ctx context.Context) error {
	configs, err := s.reminders.ListConfigs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list reminder configs: %w", err)
	}
	userIDs, err := s.receivables.OpenUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	byUser := make(map[string]models.AutoReminderConfig, len(configs))
	for _, c := range configs {
		byUser[c.UserID.String()] = c
	}
	for _, id := range userIDs {
		if _, ok := byUser[id]; ok {
			continue
		}
		uid, err := parseID(id)
		if err != nil {
			continue
		}
		byUser[id] = models.DefaultReminderConfig(uid)
	}

	hour := s.now().In(s.location).Hour()
	var total ReminderStats
	for userID, config := range byUser {
		if !config.IsActive || config.PreferredHour != hour {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		stats, err := s.runUser(ctx, userID, &config)
		if err != nil {
			log.Printf("❌ Reminders for user %s failed: %v", userID, err)
			continue
		}
		total.Users++
		total.add(*stats)
	}

	log.Printf("⏰ Reminder job: %d users, %d due and %d overdue reminders sent, %d failed",
		total.Users, total.DueSent, total.OverdueSent, total.Failed)
	return nil
}

// RunUser sends the caller's reminders now, ignoring the preferred hour.
func (s *ReminderService) RunUser(ctx context.Context, userID string) (*ReminderStats, error) {
	config, err := s.Config(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.runUser(ctx, userID, config)
	if err != nil {
		return nil, err
	}
	stats.Users = 1
	return stats, nil
}

func (s *ReminderService) runUser(ctx context.Context, userID string, config *models.AutoReminderConfig) (*ReminderStats, error) {
	today := money.DateOnly(s.now().In(s.location))
	stats := &ReminderStats{}

	if config.EnableDueReminders {
		for _, days := range models.ParseDays(config.DaysBeforeDue) {
			due := today.AddDate(0, 0, days)
			receivables, err := s.receivablesDueOn(ctx, userID, due, models.StatusPending)
			if err != nil {
				return nil, err
			}
			for i := range receivables {
				if s.remind(ctx, &receivables[i], models.ReminderDueDate, days) {
					stats.DueSent++
				} else {
					stats.Failed++
				}
			}

			n, err := s.logPayablesDue(ctx, userID, due, days)
			if err != nil {
				return nil, err
			}
			stats.PayablesDue += n
		}
	}

	if config.EnableOverdueReminders {
		for _, days := range models.ParseDays(config.DaysAfterDue) {
			due := today.AddDate(0, 0, -days)
			receivables, err := s.receivablesDueOn(ctx, userID, due, models.StatusPending, models.StatusOverdue)
			if err != nil {
				return nil, err
			}
			for i := range receivables {
				r := &receivables[i]
				if !s.remind(ctx, r, models.ReminderOverdue, days) {
					stats.Failed++
					continue
				}
				stats.OverdueSent++
				if r.Status == models.StatusPending {
					err := s.receivables.Updates(ctx, userID, r.ID.String(), map[string]interface{}{"status": models.StatusOverdue})
					if err != nil {
						log.Printf("⚠️  Failed to mark receivable %s overdue: %v", r.ID, err)
					}
				}
			}
		}
	}
	return stats, nil
}

func (s *ReminderService) receivablesDueOn(ctx context.Context, userID string, due time.Time, statuses ...string) ([]models.Receivable, error) {
	receivables, err := s.receivables.List(ctx, repositories.AccountFilter{
		UserID:   userID,
		Statuses: statuses,
		DueFrom:  &due,
		DueTo:    &due,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list receivables due %s: %w", money.FormatDate(due), err)
	}
	return receivables, nil
}

// logPayablesDue only logs; payables are the user's own bills.
func (s *ReminderService) logPayablesDue(ctx context.Context, userID string, due time.Time, days int) (int, error) {
	payables, err := s.payables.List(ctx, repositories.AccountFilter{
		UserID:   userID,
		Statuses: []string{models.StatusPending},
		DueFrom:  &due,
		DueTo:    &due,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list payables: %w", err)
	}
	for _, p := range payables {
		log.Printf("💳 Payable %q of user %s (%s) is due in %d days", p.Description, userID, money.FormatBRL(p.Amount), days)
	}
	return len(payables), nil
}

// remind sends one reminder using the user's active template of the type,
// or the built-in text.
func (s *ReminderService) remind(ctx context.Context, r *models.Receivable, reminderType string, days int) bool {
	if s.notifier == nil {
		return false
	}

	clientName, phone := "", ""
	if r.Client != nil {
		clientName, phone = r.Client.Name, r.Client.WhatsApp
	}

	msg := notification.Message{
		UserID:   r.UserID.String(),
		ClientID: r.ClientID.String(),
		Phone:    phone,
		Kind:     notification.KindReminder,
	}
	if reminderType == models.ReminderOverdue {
		msg.Kind = notification.KindOverdue
		msg.Text = notification.OverdueReminderText(clientName, r.Description, r.Amount, r.DueDate, days)
	} else {
		msg.Text = notification.DueReminderText(clientName, r.Description, r.Amount, r.DueDate, days)
	}

	template, err := s.reminders.ActiveTemplate(ctx, msg.UserID, reminderType)
	if err == nil {
		msg.Template = template.Name
		msg.Text = notification.RenderTemplate(template.Message, notification.TemplateVars{
			Client:      clientName,
			Description: r.Description,
			Amount:      r.Amount,
			DueDate:     r.DueDate,
			Days:        days,
		})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("⚠️  Failed to load reminder template: %v", err)
	}

	return s.notifier.Notify(ctx, msg)
}
