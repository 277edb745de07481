package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/dealroom-backend/pkg/logger"
)

type activationReconciler interface {
	ReconcilePendingActivations(ctx context.Context, batch int) (int, error)
}

// ActivationReconcileJobParams configure the activation retry job.
type ActivationReconcileJobParams struct {
	Logger *logger.Logger
	Orders activationReconciler
	Batch  int
}

// NewActivationReconcileJob builds the job that retries entitlement activation
// for completed orders whose first attempt failed.
func NewActivationReconcileJob(params ActivationReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	batch := params.Batch
	if batch <= 0 {
		batch = 50
	}
	return &activationReconcileJob{
		logg:   params.Logger,
		orders: params.Orders,
		batch:  batch,
	}, nil
}

type activationReconcileJob struct {
	logg   *logger.Logger
	orders activationReconciler
	batch  int
}

func (j *activationReconcileJob) Name() string { return "activation-reconcile" }

func (j *activationReconcileJob) Run(ctx context.Context) error {
	activated, err := j.orders.ReconcilePendingActivations(ctx, j.batch)
	logCtx := j.logg.WithField(ctx, "activated", activated)
	j.logg.Info(logCtx, "activation reconcile loop complete")
	return err
}
