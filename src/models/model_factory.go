package models

import (
	"go.uber.org/zap"

	"github.com/tsotimus/monkko/src/schemas"
	"github.com/tsotimus/monkko/src/store"
)

type ModelFactory interface {
	NewModel(schema schemas.Definition) (*Model, error)
}

// ModelFactoryImpl builds models that share one store client, catalog and
// logger.
type ModelFactoryImpl struct {
	client  store.Client
	catalog *schemas.Catalog
	logger  *zap.SugaredLogger
}

func NewModelFactory(client store.Client, catalog *schemas.Catalog, logger *zap.SugaredLogger) ModelFactory {
	return &ModelFactoryImpl{
		client:  client,
		catalog: catalog,
		logger:  logger,
	}
}

func (f *ModelFactoryImpl) NewModel(schema schemas.Definition) (*Model, error) {
	return NewModel(schema, f.client, f.catalog, f.logger)
}

// WithCatalog replaces the catalog models are registered into.
func (f *ModelFactoryImpl) WithCatalog(catalog *schemas.Catalog) *ModelFactoryImpl {
	f.catalog = catalog
	return f
}
