package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	"github.com/harborlight-org/harborlight-backend/pkg/logger"
)

type fakeRenewableRepo struct {
	members []models.Member
	err     error
}

func (f *fakeRenewableRepo) ListActiveWithExpiry(ctx context.Context) ([]models.Member, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.members, nil
}

func newReminderJob(t *testing.T, repo *fakeRenewableRepo, mail *fakeMailEnqueuer, now time.Time, days []int) *renewalReminderJob {
	t.Helper()
	jobIface, err := NewRenewalReminderJob(RenewalReminderJobParams{
		Logger:       logger.New(logger.Options{ServiceName: "cron-test"}),
		MemberRepo:   repo,
		MailRepo:     mail,
		ReminderDays: days,
	})
	if err != nil {
		t.Fatalf("NewRenewalReminderJob: %v", err)
	}
	job, ok := jobIface.(*renewalReminderJob)
	if !ok {
		t.Fatalf("expected renewalReminderJob, got %T", jobIface)
	}
	job.now = func() time.Time { return now }
	return job
}

func TestRenewalReminderJobSendsOnReminderDays(t *testing.T) {
	now := time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC)

	thirtyOut := now.AddDate(0, 0, 30)
	sevenOut := now.AddDate(0, 0, 7)
	repo := &fakeRenewableRepo{members: []models.Member{
		expiringMember(&thirtyOut),
		expiringMember(&sevenOut),
	}}
	mail := &fakeMailEnqueuer{}
	job := newReminderJob(t, repo, mail, now, nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(mail.enqueued) != 2 {
		t.Fatalf("expected 2 reminders, got %d", len(mail.enqueued))
	}
	subjects := []string{mail.enqueued[0].Subject, mail.enqueued[1].Subject}
	want := []string{
		"Your membership expires in 30 days",
		"Your membership expires in 7 days",
	}
	for i, subject := range subjects {
		if subject != want[i] {
			t.Fatalf("subject %d: got %q, want %q", i, subject, want[i])
		}
	}
}

func TestRenewalReminderJobSkipsOffDays(t *testing.T) {
	now := time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC)

	var members []models.Member
	for _, offset := range []int{29, 31, 6, 8, 1} {
		expiry := now.AddDate(0, 0, offset)
		members = append(members, expiringMember(&expiry))
	}
	repo := &fakeRenewableRepo{members: members}
	mail := &fakeMailEnqueuer{}
	job := newReminderJob(t, repo, mail, now, nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(mail.enqueued) != 0 {
		t.Fatalf("expected no reminders, got %d", len(mail.enqueued))
	}
}

func TestRenewalReminderJobRoundsPartialDaysUp(t *testing.T) {
	now := time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC)

	// 6 days and 12 hours out rounds up to 7 days.
	expiry := now.Add(6*24*time.Hour + 12*time.Hour)
	repo := &fakeRenewableRepo{members: []models.Member{expiringMember(&expiry)}}
	mail := &fakeMailEnqueuer{}
	job := newReminderJob(t, repo, mail, now, nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(mail.enqueued) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(mail.enqueued))
	}
}

func TestRenewalReminderJobSkipsLifetimeMembers(t *testing.T) {
	now := time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC)
	repo := &fakeRenewableRepo{members: []models.Member{expiringMember(nil)}}
	mail := &fakeMailEnqueuer{}
	job := newReminderJob(t, repo, mail, now, nil)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(mail.enqueued) != 0 {
		t.Fatal("lifetime members should not receive reminders")
	}
}

func TestRenewalReminderJobHonorsCustomSchedule(t *testing.T) {
	now := time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC)
	threeOut := now.AddDate(0, 0, 3)
	repo := &fakeRenewableRepo{members: []models.Member{expiringMember(&threeOut)}}
	mail := &fakeMailEnqueuer{}
	job := newReminderJob(t, repo, mail, now, []int{3})

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(mail.enqueued) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(mail.enqueued))
	}
}

func TestRenewalReminderJobPropagatesListErrors(t *testing.T) {
	repo := &fakeRenewableRepo{err: errors.New("db down")}
	job := newReminderJob(t, repo, &fakeMailEnqueuer{}, time.Now().UTC(), nil)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
