package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/harborlight-org/harborlight-backend/internal/mailqueue"
	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	"github.com/harborlight-org/harborlight-backend/pkg/enums"
	"github.com/harborlight-org/harborlight-backend/pkg/logger"
	"github.com/harborlight-org/harborlight-backend/pkg/metrics"
)

const membershipExpiryJobName = "membership-expiry"

type expiringMembersRepository interface {
	ListExpiredBefore(ctx context.Context, cutoff time.Time) ([]models.Member, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.MembershipStatus) error
}

type mailEnqueuer interface {
	Enqueue(ctx context.Context, message *models.MailMessage) error
}

// MembershipExpiryJobParams configures the expiry sweep.
type MembershipExpiryJobParams struct {
	Logger     *logger.Logger
	MemberRepo expiringMembersRepository
	MailRepo   mailEnqueuer
	Metrics    *metrics.CronJobMetrics
}

// NewMembershipExpiryJob constructs the daily membership expiry sweep.
func NewMembershipExpiryJob(params MembershipExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.MemberRepo == nil {
		return nil, fmt.Errorf("member repository required")
	}
	if params.MailRepo == nil {
		return nil, fmt.Errorf("mail repository required")
	}
	return &membershipExpiryJob{
		logg:       params.Logger,
		memberRepo: params.MemberRepo,
		mailRepo:   params.MailRepo,
		metrics:    params.Metrics,
		now:        time.Now,
	}, nil
}

// membershipExpiryJob marks lapsed members expired and queues a notice.
// A failure on one member never blocks the rest of the sweep.
type membershipExpiryJob struct {
	logg       *logger.Logger
	memberRepo expiringMembersRepository
	mailRepo   mailEnqueuer
	metrics    *metrics.CronJobMetrics
	now        func() time.Time
}

func (j *membershipExpiryJob) Name() string {
	return membershipExpiryJobName
}

func (j *membershipExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	lapsed, err := j.memberRepo.ListExpiredBefore(ctx, now)
	if err != nil {
		return fmt.Errorf("list expired members: %w", err)
	}
	if len(lapsed) == 0 {
		j.logg.Info(ctx, "no memberships to expire")
		return nil
	}

	var errs error
	expired := 0
	for _, member := range lapsed {
		if err := j.expireMember(ctx, member); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("member %s: %w", member.ID, err))
			continue
		}
		expired++
	}

	if j.metrics != nil {
		j.metrics.AddItems(membershipExpiryJobName, "expired", expired)
	}
	ctx = j.logg.WithFields(ctx, map[string]any{
		"expired": expired,
		"failed":  len(lapsed) - expired,
	})
	j.logg.Info(ctx, "membership expiry sweep finished")
	return errs
}

func (j *membershipExpiryJob) expireMember(ctx context.Context, member models.Member) error {
	if err := j.memberRepo.UpdateStatus(ctx, member.ID, enums.MembershipStatusExpired); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	expiredOn := j.now().UTC()
	if member.MembershipExpiry != nil {
		expiredOn = *member.MembershipExpiry
	}
	notice := mailqueue.NewMembershipExpired(
		member.Email,
		member.FirstName+" "+member.LastName,
		expiredOn,
	)
	if err := j.mailRepo.Enqueue(ctx, notice); err != nil {
		return fmt.Errorf("queue expiry notice: %w", err)
	}
	return nil
}
