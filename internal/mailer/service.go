package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	"github.com/harborlight-org/harborlight-backend/pkg/logger"
)

const (
	defaultPollInterval = 30 * time.Second
	defaultBatchSize    = 25
	defaultMaxAttempts  = 5
)

// queueReader covers the mail queue operations the dispatcher needs.
type queueReader interface {
	ListQueued(ctx context.Context, limit int) ([]models.MailMessage, error)
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string, terminal bool) error
}

// ServiceParams configure the mail dispatcher.
type ServiceParams struct {
	Logger       *logger.Logger
	Queue        queueReader
	Sender       Sender
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	Now          func() time.Time
}

// Service drains the mail queue on a fixed cadence and hands each message to
// the configured sender.
type Service struct {
	logg         *logger.Logger
	queue        queueReader
	sender       Sender
	pollInterval time.Duration
	batchSize    int
	maxAttempts  int
	now          func() time.Time
}

// NewService builds a mail dispatch service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Queue == nil {
		return nil, fmt.Errorf("mail queue required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	pollInterval := params.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	maxAttempts := params.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		logg:         params.Logger,
		queue:        params.Queue,
		sender:       params.Sender,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		maxAttempts:  maxAttempts,
		now:          now,
	}, nil
}

// Run polls the queue until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.drainOnce(ctx); err != nil {
		s.logg.Error(ctx, "mail dispatch cycle failed", err)
	}
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "mail dispatcher context canceled")
			return ctx.Err()
		case <-ticker.C:
			if err := s.drainOnce(ctx); err != nil {
				s.logg.Error(ctx, "mail dispatch cycle failed", err)
			}
		}
	}
}

func (s *Service) drainOnce(ctx context.Context) error {
	queued, err := s.queue.ListQueued(ctx, s.batchSize)
	if err != nil {
		return fmt.Errorf("listing queued mail: %w", err)
	}
	if len(queued) == 0 {
		return nil
	}

	var errs error
	sent := 0
	for _, message := range queued {
		if dispatchErr := s.dispatch(ctx, message); dispatchErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("message %s: %w", message.ID, dispatchErr))
			continue
		}
		sent++
	}

	summaryCtx := s.logg.WithField(ctx, "sent", sent)
	summaryCtx = s.logg.WithField(summaryCtx, "failed", len(queued)-sent)
	s.logg.Info(summaryCtx, "mail dispatch cycle complete")
	return errs
}

func (s *Service) dispatch(ctx context.Context, message models.MailMessage) error {
	sendErr := s.sender.Send(ctx, Message{
		ToAddress: message.ToAddress,
		ToName:    message.ToName,
		Subject:   message.Subject,
		Body:      message.Body,
	})
	if sendErr == nil {
		if err := s.queue.MarkSent(ctx, message.ID, s.now()); err != nil {
			return fmt.Errorf("marking sent: %w", err)
		}
		return nil
	}

	terminal := message.Attempts+1 >= s.maxAttempts
	if err := s.queue.MarkFailed(ctx, message.ID, sendErr.Error(), terminal); err != nil {
		return fmt.Errorf("marking failed: %w", err)
	}
	if terminal {
		msgCtx := s.logg.WithField(ctx, "message_id", message.ID.String())
		s.logg.Error(msgCtx, "mail message abandoned after repeated failures", sendErr)
	}
	return fmt.Errorf("send: %w", sendErr)
}
