package app

import (
	"context"
	"onlinecourse_backend/pkg/logger"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const reconcileTimeout = time.Minute

// startJobs schedules the enrollment count reconcile job. An empty spec disables it.
func (a *App) startJobs() error {
	spec := a.Config.Jobs.ReconcileSpec
	if spec == "" {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, a.reconcileEnrollments); err != nil {
		return err
	}
	c.Start()
	a.Cron = c

	logger.Log.Info("Enrollment reconcile job scheduled", zap.String("spec", spec))
	return nil
}

func (a *App) reconcileEnrollments() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	fixed, err := a.services.course.ReconcileEnrollmentCounts(ctx)
	if err != nil {
		logger.Log.Error("Enrollment reconcile failed", zap.Error(err))
		return
	}
	if fixed > 0 {
		logger.Log.Info("Enrollment counts reconciled", zap.Int64("courses", fixed))
	}
}
