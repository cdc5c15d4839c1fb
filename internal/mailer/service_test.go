package mailer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harborlight-org/harborlight-backend/pkg/db/models"
	"github.com/harborlight-org/harborlight-backend/pkg/logger"
)

type fakeQueue struct {
	queued  []models.MailMessage
	listErr error

	sentIDs   []uuid.UUID
	failedIDs []uuid.UUID
	reasons   []string
	terminals []bool
}

func (f *fakeQueue) ListQueued(ctx context.Context, limit int) ([]models.MailMessage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit < len(f.queued) {
		return f.queued[:limit], nil
	}
	return f.queued, nil
}

func (f *fakeQueue) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	f.sentIDs = append(f.sentIDs, id)
	return nil
}

func (f *fakeQueue) MarkFailed(ctx context.Context, id uuid.UUID, reason string, terminal bool) error {
	f.failedIDs = append(f.failedIDs, id)
	f.reasons = append(f.reasons, reason)
	f.terminals = append(f.terminals, terminal)
	return nil
}

type fakeSender struct {
	sent   []Message
	failOn map[string]error
}

func (f *fakeSender) Send(ctx context.Context, msg Message) error {
	if err, ok := f.failOn[msg.ToAddress]; ok {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func queuedMessage(to string, attempts int) models.MailMessage {
	return models.MailMessage{
		ID:        uuid.New(),
		ToAddress: to,
		ToName:    "Avery Chen",
		Subject:   "Welcome to Harborlight",
		Body:      "Thanks for joining.",
		Attempts:  attempts,
	}
}

func newTestDispatcher(t *testing.T, queue *fakeQueue, sender *fakeSender) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:      logger.New(logger.Options{ServiceName: "mailer-test"}),
		Queue:       queue,
		Sender:      sender,
		MaxAttempts: 3,
		Now:         func() time.Time { return time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestDrainOnceSendsAndMarksSent(t *testing.T) {
	first := queuedMessage("a@example.com", 0)
	second := queuedMessage("b@example.com", 0)
	queue := &fakeQueue{queued: []models.MailMessage{first, second}}
	sender := &fakeSender{}
	svc := newTestDispatcher(t, queue, sender)

	if err := svc.drainOnce(context.Background()); err != nil {
		t.Fatalf("drainOnce: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 sends, got %d", len(sender.sent))
	}
	if len(queue.sentIDs) != 2 {
		t.Fatalf("expected 2 messages marked sent, got %d", len(queue.sentIDs))
	}
	if sender.sent[0].Subject != "Welcome to Harborlight" {
		t.Fatalf("unexpected subject %q", sender.sent[0].Subject)
	}
}

func TestDrainOnceRequeuesFailuresBelowMaxAttempts(t *testing.T) {
	flaky := queuedMessage("flaky@example.com", 0)
	healthy := queuedMessage("ok@example.com", 0)
	queue := &fakeQueue{queued: []models.MailMessage{flaky, healthy}}
	sender := &fakeSender{failOn: map[string]error{"flaky@example.com": errors.New("timeout")}}
	svc := newTestDispatcher(t, queue, sender)

	err := svc.drainOnce(context.Background())
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if len(queue.sentIDs) != 1 || queue.sentIDs[0] != healthy.ID {
		t.Fatalf("healthy message should still be sent, got %v", queue.sentIDs)
	}
	if len(queue.failedIDs) != 1 || queue.failedIDs[0] != flaky.ID {
		t.Fatalf("expected failure recorded for flaky message, got %v", queue.failedIDs)
	}
	if queue.terminals[0] {
		t.Fatal("first failure should requeue, not abandon")
	}
	if queue.reasons[0] != "timeout" {
		t.Fatalf("unexpected failure reason %q", queue.reasons[0])
	}
}

func TestDrainOnceAbandonsAtMaxAttempts(t *testing.T) {
	exhausted := queuedMessage("flaky@example.com", 2)
	queue := &fakeQueue{queued: []models.MailMessage{exhausted}}
	sender := &fakeSender{failOn: map[string]error{"flaky@example.com": errors.New("bounced")}}
	svc := newTestDispatcher(t, queue, sender)

	if err := svc.drainOnce(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(queue.terminals) != 1 || !queue.terminals[0] {
		t.Fatalf("third failure should be terminal, got %v", queue.terminals)
	}
}

func TestDrainOnceEmptyQueueIsQuiet(t *testing.T) {
	queue := &fakeQueue{}
	sender := &fakeSender{}
	svc := newTestDispatcher(t, queue, sender)

	if err := svc.drainOnce(context.Background()); err != nil {
		t.Fatalf("drainOnce: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("nothing should be sent from an empty queue")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	svc := newTestDispatcher(t, &fakeQueue{}, &fakeSender{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := svc.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
