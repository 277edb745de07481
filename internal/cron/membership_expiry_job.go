package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/dealroom-backend/pkg/logger"
)

type membershipExpirer interface {
	ExpireLapsed(ctx context.Context, batch int) (int64, error)
}

// MembershipExpiryJobParams configure the lapsed membership sweep.
type MembershipExpiryJobParams struct {
	Logger       *logger.Logger
	Entitlements membershipExpirer
	Batch        int
}

// NewMembershipExpiryJob builds the job that moves active memberships past
// their renewal date to expired.
func NewMembershipExpiryJob(params MembershipExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Entitlements == nil {
		return nil, fmt.Errorf("entitlements service required")
	}
	batch := params.Batch
	if batch <= 0 {
		batch = 200
	}
	return &membershipExpiryJob{
		logg:         params.Logger,
		entitlements: params.Entitlements,
		batch:        batch,
	}, nil
}

type membershipExpiryJob struct {
	logg         *logger.Logger
	entitlements membershipExpirer
	batch        int
}

func (j *membershipExpiryJob) Name() string { return "membership-expiry" }

func (j *membershipExpiryJob) Run(ctx context.Context) error {
	expired, err := j.entitlements.ExpireLapsed(ctx, j.batch)
	if err != nil {
		return fmt.Errorf("expire lapsed memberships: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "expired", expired)
	j.logg.Info(logCtx, "membership expiry loop complete")
	return nil
}
