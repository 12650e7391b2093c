package inventory

import (
	"github.com/sirupsen/logrus"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/entities/importjob"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/eventbus"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/metrics"
)

// RegisterObservers attaches the module's event bus subscribers: job
// lifecycle logging and the completed-jobs counter. The coordinator only
// publishes; everything downstream of a lifecycle transition lives here.
func RegisterObservers(bus eventbus.EventBus, logger *logrus.Logger) {
	bus.Subscribe(func(e importjob.ImportStartedEvent) {
		logger.WithFields(logrus.Fields{
			"job_id": e.Job.ID,
			"kind":   e.Job.Kind,
			"file":   e.Job.File.Name,
		}).Info("import job started")
	})
	bus.Subscribe(func(e importjob.ImportCompletedEvent) {
		metrics.JobsTotal.WithLabelValues(string(importjob.StateCompleted)).Inc()
		logger.WithFields(logrus.Fields{
			"job_id":  e.Job.ID,
			"kind":    e.Job.Kind,
			"created": e.Result.Stats.Created,
			"updated": e.Result.Stats.Updated,
			"errors":  e.Result.Stats.Errors,
			"cost":    e.Result.Cost,
		}).Info("import job completed")
	})
}
