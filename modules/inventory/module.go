// Package inventory wires the import/reconciliation pipeline together:
// extraction, the streaming import coordinator, session recovery and
// verification.
package inventory

import (
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/internal/server"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/infrastructure/classifier"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/infrastructure/persistence"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/infrastructure/recovery"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/presentation/controllers"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/modules/inventory/services"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/configuration"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/eventbus"
	"github.com/gabrielfontenla1/neumaticos-del-valle-sub002/pkg/kv"
)

type Dependencies struct {
	Configuration *configuration.Configuration
	EventBus      eventbus.EventBus
	KV            kv.Store
}

// Controllers builds the module's HTTP surface with its full dependency
// graph.
func Controllers(deps Dependencies) []server.Controller {
	conf := deps.Configuration

	products := persistence.NewPgProductRepository()
	provider := classifier.NewOpenAIProvider(classifier.Config{
		APIKey:      conf.Classifier.APIKey,
		BaseURL:     conf.Classifier.BaseURL,
		CallTimeout: conf.Classifier.CallTimeout,
		MaxRetries:  conf.Classifier.MaxRetries,
	})
	recoveryStore := recovery.NewStore(deps.KV, recovery.Options{
		TTL:       conf.Recovery.TTL,
		MaxLogs:   conf.Recovery.MaxLogs,
		MaxSample: conf.Recovery.MaxSample,
	})

	importService := services.NewImportService(services.ImportServiceConfig{
		Products:   products,
		Classifier: provider,
		EventBus:   deps.EventBus,
	})
	verificationService := services.NewVerificationService(products)

	return []server.Controller{
		controllers.NewImportController(controllers.ImportControllerConfig{
			ImportService: importService,
			RecoveryStore: recoveryStore,
			MaxUploadSize: conf.MaxUploadSize,
		}),
		controllers.NewSessionsController(recoveryStore),
		controllers.NewVerificationController(verificationService, recoveryStore),
	}
}
