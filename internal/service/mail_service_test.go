package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amar-rokto/api/internal/models"
	"github.com/amar-rokto/api/pkg/jobs"
	"github.com/amar-rokto/api/pkg/mailer"
)

type channelMailer struct {
	sent chan mailer.Message
}

func (m *channelMailer) Send(msg mailer.Message) error {
	m.sent <- msg
	return nil
}

func waitForMail(t *testing.T, ch chan mailer.Message) mailer.Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mail delivery")
		return mailer.Message{}
	}
}

func TestRecordResolvedMailsUserAndBank(t *testing.T) {
	users := newAuthUserStoreStub(&models.User{
		ID:        "user-1",
		Email:     "donor@example.org",
		FirstName: "Rahim",
		LastName:  "Uddin",
	})
	m := &channelMailer{sent: make(chan mailer.Message, 4)}
	svc := NewMailService(users, m, jobs.QueueConfig{Workers: 1}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	svc.RecordResolved(ctx, ResolvedEvent{
		Kind:       models.KindRequest,
		Status:     models.StatusApproved,
		RecordID:   "req-1",
		UserID:     "user-1",
		BankName:   "City Blood Bank",
		BankEmail:  "bank@example.org",
		Units:      2,
		BloodGroup: "O-",
		Date:       time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC),
	})

	first := waitForMail(t, m.sent)
	require.Equal(t, "donor@example.org", first.To)
	require.Contains(t, first.Subject, "approved")
	require.Contains(t, first.HTML, "Rahim Uddin")
	require.Contains(t, first.HTML, "2 unit(s) of O-")
	require.Contains(t, first.HTML, "20 September 2026")

	second := waitForMail(t, m.sent)
	require.Equal(t, "bank@example.org", second.To)
	require.Contains(t, second.HTML, "req-1")
}

func TestRecordResolvedSkipsUnknownUser(t *testing.T) {
	m := &channelMailer{sent: make(chan mailer.Message, 4)}
	svc := NewMailService(newAuthUserStoreStub(), m, jobs.QueueConfig{Workers: 1}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	svc.RecordResolved(ctx, ResolvedEvent{
		Kind:      models.KindDonation,
		Status:    models.StatusRejected,
		RecordID:  "don-1",
		UserID:    "ghost",
		BankEmail: "bank@example.org",
	})

	// Only the bank ledger copy goes out.
	msg := waitForMail(t, m.sent)
	require.Equal(t, "bank@example.org", msg.To)

	select {
	case extra := <-m.sent:
		t.Fatalf("unexpected extra mail to %s", extra.To)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestComposeDecisionMailWording(t *testing.T) {
	user := &models.User{Email: "donor@example.org", FirstName: "Rahim"}

	cases := []struct {
		name    string
		event   ResolvedEvent
		subject string
		phrase  string
	}{
		{
			name:    "donation approved",
			event:   ResolvedEvent{Kind: models.KindDonation, Status: models.StatusApproved, BankName: "City"},
			subject: "confirmed",
			phrase:  "lifesaver",
		},
		{
			name:    "donation rejected",
			event:   ResolvedEvent{Kind: models.KindDonation, Status: models.StatusRejected, BankName: "City"},
			subject: "Update",
			phrase:  "could not accept",
		},
		{
			name:    "request approved",
			event:   ResolvedEvent{Kind: models.KindRequest, Status: models.StatusApproved, BankName: "City", Units: 1, BloodGroup: "A+"},
			subject: "approved",
			phrase:  "collect the units",
		},
		{
			name:    "request rejected",
			event:   ResolvedEvent{Kind: models.KindRequest, Status: models.StatusRejected, BankName: "City", Units: 1, BloodGroup: "A+"},
			subject: "Update",
			phrase:  "unable to fulfill",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := composeDecisionMail(user, tc.event)
			require.Equal(t, "donor@example.org", msg.To)
			require.True(t, strings.Contains(msg.Subject, tc.subject), "subject %q", msg.Subject)
			require.Contains(t, msg.HTML, tc.phrase)
		})
	}
}

func TestFormatMailDateZeroValue(t *testing.T) {
	require.Equal(t, "the scheduled date", formatMailDate(time.Time{}))
}
