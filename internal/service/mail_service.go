package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/amar-rokto/api/internal/models"
	"github.com/amar-rokto/api/pkg/jobs"
	"github.com/amar-rokto/api/pkg/mailer"
)

type mailUserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// MailService turns moderation decisions into emails, delivered by a
// background worker pool so SMTP latency never blocks the request path.
type MailService struct {
	users  mailUserStore
	mailer mailer.Mailer
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewMailService constructs the service and its delivery queue.
func NewMailService(users mailUserStore, m mailer.Mailer, cfg jobs.QueueConfig, logger *zap.Logger) *MailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = mailer.NopMailer{}
	}
	svc := &MailService{users: users, mailer: m, logger: logger}
	svc.queue = jobs.NewQueue("mail", svc.deliver, cfg)
	return svc
}

// Start launches the delivery workers.
func (s *MailService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the delivery workers.
func (s *MailService) Stop() {
	s.queue.Stop()
}

// RecordResolved implements ModerationNotifier. The recipient's email is
// resolved up front so the queued jobs are self-contained. The bank gets a
// ledger copy of every decision.
func (s *MailService) RecordResolved(ctx context.Context, event ResolvedEvent) {
	if event.UserID != "" {
		user, err := s.users.FindByID(ctx, event.UserID)
		if err != nil {
			s.logger.Warn("skipping decision email, user lookup failed",
				zap.String("user_id", event.UserID), zap.Error(err))
		} else {
			s.enqueue(event.RecordID, composeDecisionMail(user, event))
		}
	}
	if event.BankEmail != "" {
		s.enqueue(event.RecordID, composeBankCopy(event))
	}
}

func (s *MailService) enqueue(recordID string, msg mailer.Message) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    "decision-email",
		Payload: msg,
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue decision email",
			zap.String("record_id", recordID), zap.Error(err))
	}
}

func (s *MailService) deliver(_ context.Context, job jobs.Job) error {
	msg, ok := job.Payload.(mailer.Message)
	if !ok {
		s.logger.Error("unexpected mail job payload", zap.String("job_id", job.ID))
		return nil
	}
	return s.mailer.Send(msg)
}

func composeDecisionMail(user *models.User, event ResolvedEvent) mailer.Message {
	var subject, body string
	switch {
	case event.Kind == models.KindDonation && event.Status == models.StatusApproved:
		subject = "Your donation appointment is confirmed"
		body = fmt.Sprintf(
			"<p>Dear %s,</p><p>Great news! <b>%s</b> has confirmed your donation appointment on %s.</p><p>Thank you for being a lifesaver.</p>",
			user.FullName(), event.BankName, formatMailDate(event.Date))
	case event.Kind == models.KindDonation:
		subject = "Update on your donation appointment"
		body = fmt.Sprintf(
			"<p>Dear %s,</p><p><b>%s</b> could not accept your donation appointment on %s. Please reschedule or contact the bank directly.</p>",
			user.FullName(), event.BankName, formatMailDate(event.Date))
	case event.Status == models.StatusApproved:
		subject = "Your blood request has been approved"
		body = fmt.Sprintf(
			"<p>Dear %s,</p><p><b>%s</b> has approved your request for %d unit(s) of %s. Please collect the units before %s.</p>",
			user.FullName(), event.BankName, event.Units, event.BloodGroup, formatMailDate(event.Date))
	default:
		subject = "Update on your blood request"
		body = fmt.Sprintf(
			"<p>Dear %s,</p><p>We are sorry. <b>%s</b> was unable to fulfill your request for %d unit(s) of %s. Please try another blood bank or check the urgent alerts board.</p>",
			user.FullName(), event.BankName, event.Units, event.BloodGroup)
	}
	body += "<p>&mdash; The Amar Rokto team</p>"

	return mailer.Message{To: user.Email, Subject: subject, HTML: body}
}

func composeBankCopy(event ResolvedEvent) mailer.Message {
	noun := "blood request"
	if event.Kind == models.KindDonation {
		noun = "donation appointment"
	}
	body := fmt.Sprintf(
		"<p>A %s (%d unit(s)%s) was marked <b>%s</b> on %s.</p><p>Record reference: %s</p>",
		noun, event.Units, groupSuffix(event.BloodGroup), event.Status,
		formatMailDate(event.Date), event.RecordID)
	return mailer.Message{
		To:      event.BankEmail,
		Subject: fmt.Sprintf("Moderation record: %s %s", noun, event.Status),
		HTML:    body,
	}
}

func groupSuffix(group string) string {
	if group == "" {
		return ""
	}
	return " of " + group
}

func formatMailDate(ts time.Time) string {
	if ts.IsZero() {
		return "the scheduled date"
	}
	return ts.Format("2 January 2006")
}
