package record

import (
	"context"
	"fmt"
	"time"

	"go-admin/internal/config"
	"go-admin/internal/database"
	"go-admin/internal/features/module"
	"go-admin/internal/metrics"
	"go-admin/pkg/condition"
	"go-admin/pkg/criteria"
	"go-admin/pkg/pagination"

	sq "github.com/Masterminds/squirrel"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type RecordService interface {
	List(ctx context.Context, moduleName string, q ListQuery) (*PageResult, error)
	Catalog(moduleName string) (*criteria.Catalog, error)
	Export(ctx context.Context, moduleName string, q ListQuery) ([]byte, string, error)
}

// RecordServiceImpl routes requests to the lister built for each module at
// startup. The map is never written after construction.
type RecordServiceImpl struct {
	listers map[string]Lister
}

func NewRecordServiceWithListers(listers map[string]Lister) *RecordServiceImpl {
	return &RecordServiceImpl{listers: listers}
}

func NewRecordService(
	registry *module.Registry,
	mongodb *database.MongodbDB,
	pools *database.SQLPools,
	cfg *config.Config,
	log *zap.Logger,
	m *metrics.Metrics,
) RecordService {
	b := &listerBuilder{
		ops:     criteria.DefaultRegistry(),
		planner: pagination.NewPlanner(cfg.PageSize, cfg.MaxLimit),
		timeout: cfg.QueryTimeout,
		mongodb: mongodb,
		pools:   pools,
		log:     log,
		metrics: m,
	}

	listers := make(map[string]Lister)
	for _, e := range registry.List() {
		l, err := b.build(e)
		if err != nil {
			log.Warn("Module disabled", zap.String("module", e.Module.Name), zap.Error(err))
			continue
		}
		listers[e.Module.Name] = l
	}
	return NewRecordServiceWithListers(listers)
}

func (s *RecordServiceImpl) lister(moduleName string) (Lister, error) {
	l, ok := s.listers[moduleName]
	if !ok {
		return nil, module.ErrModuleNotFound
	}
	return l, nil
}

func (s *RecordServiceImpl) List(ctx context.Context, moduleName string, q ListQuery) (*PageResult, error) {
	l, err := s.lister(moduleName)
	if err != nil {
		return nil, err
	}
	return l.List(ctx, q)
}

func (s *RecordServiceImpl) Catalog(moduleName string) (*criteria.Catalog, error) {
	l, err := s.lister(moduleName)
	if err != nil {
		return nil, err
	}
	return l.Catalog(), nil
}

type listerBuilder struct {
	ops     *criteria.Registry
	planner pagination.Planner
	timeout time.Duration
	mongodb *database.MongodbDB
	pools   *database.SQLPools
	log     *zap.Logger
	metrics *metrics.Metrics
}

func (b *listerBuilder) build(e *module.Entry) (Lister, error) {
	parser := criteria.NewParser(b.ops, e.Catalog)
	name := e.Module.Name
	log := b.log.With(zap.String("module", name))

	switch e.Module.Backend {
	case module.BackendMongo:
		if b.mongodb == nil {
			return nil, fmt.Errorf("mongo is not configured")
		}
		compiler := condition.NewMongoCompiler(b.ops, "")
		return &Orchestrator[bson.M]{
			Module:   name,
			Parser:   parser,
			Compiler: compiler,
			Planner:  b.planner,
			Provider: NewMongoProvider(b.mongodb.DB.Collection(e.Module.Source), compiler),
			MatchAll: bson.M{},
			Timeout:  b.timeout,
			Log:      log,
			Metrics:  b.metrics,
		}, nil
	case module.BackendPostgres, module.BackendMySQL:
		db, err := b.pools.Pool(string(e.Module.Backend))
		if err != nil {
			return nil, err
		}
		dialect := condition.Dialect(e.Module.Backend)
		return &Orchestrator[sq.Sqlizer]{
			Module:   name,
			Parser:   parser,
			Compiler: condition.NewSQLCompiler(b.ops, dialect),
			Planner:  b.planner,
			Provider: NewSQLProvider(db, e.Module.Source, dialect),
			Timeout:  b.timeout,
			Log:      log,
			Metrics:  b.metrics,
		}, nil
	case module.BackendMemory:
		rows := make([]Record, len(e.Module.Rows))
		for i, r := range e.Module.Rows {
			rows[i] = Record(r)
		}
		return &Orchestrator[condition.Predicate]{
			Module:   name,
			Parser:   parser,
			Compiler: condition.NewMemoryCompiler(b.ops),
			Planner:  b.planner,
			Provider: NewMemoryProvider(rows),
			MatchAll: condition.MatchAll,
			Timeout:  b.timeout,
			Log:      log,
			Metrics:  b.metrics,
		}, nil
	}
	return nil, fmt.Errorf("unknown backend %q", e.Module.Backend)
}
