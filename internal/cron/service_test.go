package cron

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/harborlight-org/harborlight-backend/pkg/logger"
)

type fakeLock struct {
	acquired bool
	acquires int
	releases int
}

func (f *fakeLock) Acquire(ctx context.Context) (bool, error) {
	f.acquires++
	return f.acquired, nil
}

func (f *fakeLock) Release(ctx context.Context) error {
	f.releases++
	return nil
}

type fakeRunMarker struct {
	seen map[string]bool
	err  error
}

func newFakeRunMarker() *fakeRunMarker {
	return &fakeRunMarker{seen: map[string]bool{}}
}

func (f *fakeRunMarker) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func (f *fakeRunMarker) CronRunKey(job, day string) string {
	return fmt.Sprintf("hl:cron_run:%s:%s", job, day)
}

type testJob struct {
	name string
	err  error
	runs int
}

func (j *testJob) Name() string { return j.name }

func (j *testJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func newTestService(t *testing.T, registry *Registry, lock Lock, marker runMarker, now time.Time) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Registry: registry,
		Lock:     lock,
		Marker:   marker,
		Now:      func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestRunCycleFiresJobsAtScheduledHour(t *testing.T) {
	now := time.Date(2026, time.August, 30, 9, 5, 0, 0, time.UTC)
	midnight := &testJob{name: "membership-expiry"}
	morning := &testJob{name: "renewal-reminders"}

	registry := NewRegistry()
	registry.Register(midnight, 0)
	registry.Register(morning, 9)

	svc := newTestService(t, registry, &fakeLock{acquired: true}, newFakeRunMarker(), now)
	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if midnight.runs != 0 {
		t.Fatalf("midnight job should not run at 09:00, ran %d times", midnight.runs)
	}
	if morning.runs != 1 {
		t.Fatalf("morning job should run once, ran %d times", morning.runs)
	}
}

func TestRunCycleRunsEachJobOncePerDay(t *testing.T) {
	now := time.Date(2026, time.August, 30, 9, 5, 0, 0, time.UTC)
	job := &testJob{name: "renewal-reminders"}

	registry := NewRegistry()
	registry.Register(job, 9)

	marker := newFakeRunMarker()
	svc := newTestService(t, registry, &fakeLock{acquired: true}, marker, now)

	for i := 0; i < 3; i++ {
		if err := svc.runCycle(context.Background()); err != nil {
			t.Fatalf("runCycle %d: %v", i, err)
		}
	}
	if job.runs != 1 {
		t.Fatalf("job should run once per day, ran %d times", job.runs)
	}
	key := marker.CronRunKey(job.name, "2026-08-30")
	if !marker.seen[key] {
		t.Fatalf("expected run marker %q to be set", key)
	}
}

func TestRunCycleSkipsWhenLockHeldElsewhere(t *testing.T) {
	now := time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC)
	job := &testJob{name: "renewal-reminders"}

	registry := NewRegistry()
	registry.Register(job, 9)

	lock := &fakeLock{acquired: false}
	svc := newTestService(t, registry, lock, newFakeRunMarker(), now)
	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("job should not run without the lock, ran %d times", job.runs)
	}
	if lock.releases != 0 {
		t.Fatal("lock should not be released when it was never acquired")
	}
}

func TestRunCycleReleasesLock(t *testing.T) {
	now := time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC)
	lock := &fakeLock{acquired: true}
	svc := newTestService(t, NewRegistry(), lock, newFakeRunMarker(), now)

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if lock.acquires != 1 || lock.releases != 1 {
		t.Fatalf("expected 1 acquire and 1 release, got %d/%d", lock.acquires, lock.releases)
	}
}

func TestRunCycleContinuesPastJobFailures(t *testing.T) {
	now := time.Date(2026, time.August, 30, 9, 0, 0, 0, time.UTC)
	broken := &testJob{name: "broken", err: errors.New("boom")}
	healthy := &testJob{name: "healthy"}

	registry := NewRegistry()
	registry.Register(broken, 9)
	registry.Register(healthy, 9)

	svc := newTestService(t, registry, &fakeLock{acquired: true}, newFakeRunMarker(), now)
	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if broken.runs != 1 || healthy.runs != 1 {
		t.Fatalf("both jobs should run, got %d/%d", broken.runs, healthy.runs)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	svc := newTestService(t, NewRegistry(), &fakeLock{acquired: true}, newFakeRunMarker(), time.Now().UTC())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := svc.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRegistryClampsHours(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&testJob{name: "early"}, -3)
	registry.Register(&testJob{name: "late"}, 30)
	registry.Register(nil, 9)

	entries := registry.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].HourUTC != 0 {
		t.Fatalf("negative hour should clamp to 0, got %d", entries[0].HourUTC)
	}
	if entries[1].HourUTC != 23 {
		t.Fatalf("hour above 23 should clamp to 23, got %d", entries[1].HourUTC)
	}
}
