package inventory_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/domain/entities/importjob"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/eventbus"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/metrics"
)

func TestRegisterObservers(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	bus := eventbus.NewEventPublisher(logger)
	inventory.RegisterObservers(bus, logger)
	require.Equal(t, 2, bus.SubscribersCount())

	completed := metrics.JobsTotal.WithLabelValues(string(importjob.StateCompleted))
	before := testutil.ToFloat64(completed)

	job := importjob.NewJob(importjob.KindImport, importjob.FileIdentity{Name: "catalog.xlsx", Size: 2048})
	bus.Publish(importjob.ImportStartedEvent{Job: job})
	bus.Publish(importjob.ImportCompletedEvent{
		Job:    job,
		Result: &importjob.Result{Stats: importjob.Stats{Created: 3, Errors: 1}, Cost: 0.01},
	})

	assert.Equal(t, before+1, testutil.ToFloat64(completed))

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "import job started", entries[0].Message)
	assert.Equal(t, "catalog.xlsx", entries[0].Data["file"])
	assert.Equal(t, "import job completed", entries[1].Message)
	assert.Equal(t, 3, entries[1].Data["created"])
	assert.Equal(t, logrus.InfoLevel, entries[1].Level)
}
