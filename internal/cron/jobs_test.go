package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/dealroom-backend/pkg/logger"
)

type fakeReconciler struct {
	activated int
	batch     int
	err       error
}

func (f *fakeReconciler) ReconcilePendingActivations(ctx context.Context, batch int) (int, error) {
	f.batch = batch
	return f.activated, f.err
}

type fakeExpirer struct {
	expired int64
	batch   int
	err     error
}

func (f *fakeExpirer) ExpireLapsed(ctx context.Context, batch int) (int64, error) {
	f.batch = batch
	return f.expired, f.err
}

func TestActivationReconcileJob(t *testing.T) {
	reconciler := &fakeReconciler{activated: 3}
	job, err := NewActivationReconcileJob(ActivationReconcileJobParams{
		Logger: logger.New(logger.Options{ServiceName: "cron-test"}),
		Orders: reconciler,
		Batch:  25,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if reconciler.batch != 25 {
		t.Fatalf("unexpected batch %d", reconciler.batch)
	}
}

func TestActivationReconcileJobPropagatesErrors(t *testing.T) {
	reconciler := &fakeReconciler{activated: 1, err: errors.New("order abc: activation failed")}
	job, err := NewActivationReconcileJob(ActivationReconcileJobParams{
		Logger: logger.New(logger.Options{ServiceName: "cron-test"}),
		Orders: reconciler,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestMembershipExpiryJob(t *testing.T) {
	expirer := &fakeExpirer{expired: 7}
	job, err := NewMembershipExpiryJob(MembershipExpiryJobParams{
		Logger:       logger.New(logger.Options{ServiceName: "cron-test"}),
		Entitlements: expirer,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if expirer.batch != 200 {
		t.Fatalf("expected default batch got %d", expirer.batch)
	}
}
