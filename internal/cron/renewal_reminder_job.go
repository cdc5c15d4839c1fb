package cron

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/multierr"

	"github.com/harborlight-org/harborlight-backend/internal/mailqueue"
	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	"github.com/harborlight-org/harborlight-backend/pkg/logger"
	"github.com/harborlight-org/harborlight-backend/pkg/metrics"
)

const renewalReminderJobName = "renewal-reminders"

type renewableMembersRepository interface {
	ListActiveWithExpiry(ctx context.Context) ([]models.Member, error)
}

// RenewalReminderJobParams configures the reminder sweep.
type RenewalReminderJobParams struct {
	Logger       *logger.Logger
	MemberRepo   renewableMembersRepository
	MailRepo     mailEnqueuer
	ReminderDays []int
	Metrics      *metrics.CronJobMetrics
}

// NewRenewalReminderJob constructs the daily renewal reminder sweep.
func NewRenewalReminderJob(params RenewalReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.MemberRepo == nil {
		return nil, fmt.Errorf("member repository required")
	}
	if params.MailRepo == nil {
		return nil, fmt.Errorf("mail repository required")
	}
	days := params.ReminderDays
	if len(days) == 0 {
		days = []int{30, 7}
	}
	return &renewalReminderJob{
		logg:         params.Logger,
		memberRepo:   params.MemberRepo,
		mailRepo:     params.MailRepo,
		reminderDays: days,
		metrics:      params.Metrics,
		now:          time.Now,
	}, nil
}

// renewalReminderJob emails members whose expiry lands exactly on one of the
// configured day offsets. Running once per day means each member gets at most
// one reminder per offset.
type renewalReminderJob struct {
	logg         *logger.Logger
	memberRepo   renewableMembersRepository
	mailRepo     mailEnqueuer
	reminderDays []int
	metrics      *metrics.CronJobMetrics
	now          func() time.Time
}

func (j *renewalReminderJob) Name() string {
	return renewalReminderJobName
}

func (j *renewalReminderJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	members, err := j.memberRepo.ListActiveWithExpiry(ctx)
	if err != nil {
		return fmt.Errorf("list renewable members: %w", err)
	}

	var errs error
	sent := 0
	for _, member := range members {
		if member.MembershipExpiry == nil {
			continue
		}
		daysLeft := daysUntil(now, *member.MembershipExpiry)
		if !j.isReminderDay(daysLeft) {
			continue
		}
		reminder := mailqueue.NewRenewalReminder(
			member.Email,
			member.FirstName+" "+member.LastName,
			daysLeft,
			*member.MembershipExpiry,
		)
		if err := j.mailRepo.Enqueue(ctx, reminder); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("member %s: %w", member.ID, err))
			continue
		}
		sent++
	}

	if j.metrics != nil {
		j.metrics.AddItems(renewalReminderJobName, "reminded", sent)
	}
	ctx = j.logg.WithField(ctx, "reminders", sent)
	j.logg.Info(ctx, "renewal reminder sweep finished")
	return errs
}

func (j *renewalReminderJob) isReminderDay(daysLeft int) bool {
	for _, day := range j.reminderDays {
		if daysLeft == day {
			return true
		}
	}
	return false
}

// daysUntil rounds partial days up, so an expiry 29.5 days out counts as 30.
func daysUntil(now, expiry time.Time) int {
	return int(math.Ceil(expiry.Sub(now).Hours() / 24))
}
