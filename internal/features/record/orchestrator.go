package record

import (
	"context"
	"errors"
	"time"

	"go-admin/internal/metrics"
	"go-admin/internal/middleware"
	"go-admin/pkg/condition"
	"go-admin/pkg/criteria"
	"go-admin/pkg/pagination"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Lister serves list requests for one module.
type Lister interface {
	List(ctx context.Context, q ListQuery) (*PageResult, error)
	Catalog() *criteria.Catalog
	Backend() string
}

// Orchestrator runs the list pipeline: parse, compile, plan, then count and
// find concurrently with the same compiled filter.
type Orchestrator[F any] struct {
	Module   string
	Parser   *criteria.Parser
	Compiler condition.Compiler[F]
	Planner  pagination.Planner
	Provider Provider[F]
	// MatchAll is the filter used when the request has no criteria.
	MatchAll F
	Timeout  time.Duration

	Log     *zap.Logger
	Metrics *metrics.Metrics
}

func (o *Orchestrator[F]) Catalog() *criteria.Catalog { return o.Parser.Catalog }

func (o *Orchestrator[F]) Backend() string { return o.Compiler.Backend() }

// Plan validates and compiles a request without touching storage.
func (o *Orchestrator[F]) Plan(q ListQuery) (pagination.Plan[F], error) {
	sort, err := pagination.ParseOrderBy(q.OrderBy)
	if err != nil {
		return pagination.Plan[F]{}, err
	}

	var root *criteria.Composite
	if len(q.PKs) > 0 {
		root, err = o.Parser.ByKeys(q.PKs)
		if q.Limit == nil {
			n := int64(len(q.PKs))
			q.Limit = &n
		}
	} else {
		root, _, err = o.Parser.ParseWhere(q.Where)
	}
	if err != nil {
		return pagination.Plan[F]{}, err
	}

	filter := o.MatchAll
	if root != nil {
		if filter, err = o.Compiler.Compile(root, o.Catalog()); err != nil {
			return pagination.Plan[F]{}, err
		}
	}

	window, err := o.Planner.Window(q.Skip, q.Limit, sort, o.Catalog())
	if err != nil {
		return pagination.Plan[F]{}, err
	}
	return pagination.Plan[F]{Filter: filter, Window: window}, nil
}

func (o *Orchestrator[F]) List(ctx context.Context, q ListQuery) (*PageResult, error) {
	start := time.Now()

	plan, err := o.Plan(q)
	if err != nil {
		o.Metrics.RecordList(ctx, o.Module, o.Backend(), "invalid", time.Since(start))
		return nil, err
	}

	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	var (
		total int64
		items []Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := o.Provider.Count(gctx, plan.Filter)
		if err != nil {
			return &DataAccessError{Op: "count", Err: err}
		}
		total = n
		return nil
	})
	g.Go(func() error {
		rows, err := o.Provider.Find(gctx, plan)
		if err != nil {
			return &DataAccessError{Op: "find", Err: err}
		}
		items = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, o.fail(ctx, err, start)
	}

	if items == nil {
		items = []Record{}
	}
	o.Metrics.RecordList(ctx, o.Module, o.Backend(), "ok", time.Since(start))
	return &PageResult{Items: items, Total: total}, nil
}

// fail turns a provider error into an opaque DataAccessError, or passes the
// caller's cancellation straight through.
func (o *Orchestrator[F]) fail(ctx context.Context, err error, start time.Time) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
		o.Metrics.RecordList(ctx, o.Module, o.Backend(), "canceled", time.Since(start))
		return ctxErr
	}

	dae := &DataAccessError{Err: err}
	errors.As(err, &dae)
	dae.Module = o.Module
	dae.Backend = o.Backend()
	dae.Ref = requestRef(ctx)

	if o.Log != nil {
		o.Log.Error("List query failed",
			zap.String("module", dae.Module),
			zap.String("backend", dae.Backend),
			zap.String("op", dae.Op),
			zap.String("ref", dae.Ref),
			zap.Error(dae.Err),
		)
	}
	o.Metrics.RecordDataAccessFailure(context.WithoutCancel(ctx), o.Module, o.Backend())
	o.Metrics.RecordList(context.WithoutCancel(ctx), o.Module, o.Backend(), "error", time.Since(start))
	return dae
}

// requestRef reuses the reference set by the request middleware so the log
// line, the response header and the error body all agree.
func requestRef(ctx context.Context) string {
	if ref := middleware.RequestRef(ctx); ref != "" {
		return ref
	}
	return uuid.NewString()
}
