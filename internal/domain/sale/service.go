// Package sale implements the order entry workflow: resolve the customer by
// name, then record the order line, as one atomic unit of work.
package sale

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/madangbooks/madang/internal/domain/apperr"
	"github.com/madangbooks/madang/internal/domain/book"
	"github.com/madangbooks/madang/internal/domain/customer"
	"github.com/madangbooks/madang/internal/domain/history"
	"github.com/madangbooks/madang/internal/domain/ident"
	"github.com/madangbooks/madang/internal/domain/order"
)

// Request is a sale submitted by staff.
type Request struct {
	CustomerName string
	// CustomerID optionally picks one of several customers sharing the name.
	CustomerID int64
	BookID     int64
	// SalePrice is zero when nil.
	SalePrice *decimal.Decimal
	// OrderDate is today when zero.
	OrderDate time.Time
	// Address and Phone are stored only for a newly created customer.
	Address string
	Phone   string
}

// Result is the outcome of a submission. On Committed, OrderID and CustomerID
// are set. On Rejected or Failed, FailedAt names the step and Err the cause;
// nothing has been persisted.
type Result struct {
	State           State
	FailedAt        State
	OrderID         int64
	CustomerID      int64
	CustomerCreated bool
	Err             error
}

// Service is the order entry workflow and the read side staff use around it.
type Service struct {
	store    Store
	resolver *customer.Resolver
	recorder *order.Recorder
	reporter *history.Reporter
	now      func() time.Time

	tracer      trace.Tracer
	submissions metric.Int64Counter
	created     metric.Int64Counter
}

type options struct {
	now            func() time.Time
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	defaults       customer.Defaults
	policy         customer.Policy
	allowZeroPrice bool
	historyLimit   int
}

// Option configures a Service.
type Option func(*options)

// WithClock sets the clock used for default order dates.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMeterProvider sets the meter provider for workflow counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// WithTracerProvider sets the tracer provider for workflow spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithCustomerDefaults sets the attributes of customers created without them.
func WithCustomerDefaults(d customer.Defaults) Option {
	return func(o *options) { o.defaults = d }
}

// WithAmbiguityPolicy sets how a name shared by several customers resolves.
func WithAmbiguityPolicy(p customer.Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithZeroPrice sets whether zero-priced sales are accepted.
func WithZeroPrice(allow bool) Option {
	return func(o *options) { o.allowZeroPrice = allow }
}

// WithHistoryConcurrency bounds concurrent reports in Histories.
func WithHistoryConcurrency(n int) Option {
	return func(o *options) { o.historyLimit = n }
}

// NewService creates a Service over store.
func NewService(store Store, opts ...Option) (*Service, error) {
	minimal, _ := customer.DefaultsFor(customer.VariantMinimal)
	o := options{
		now:            time.Now,
		meterProvider:  metricnoop.NewMeterProvider(),
		tracerProvider: tracenoop.NewTracerProvider(),
		defaults:       minimal,
		policy:         customer.PolicyFirst,
		allowZeroPrice: true,
	}
	for _, opt := range opts {
		opt(&o)
	}

	meter := o.meterProvider.Meter("madang/sale")
	submissions, err := meter.Int64Counter("madang.sale.submissions",
		metric.WithDescription("Sale submissions by final state"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "submissions counter")
	}
	created, err := meter.Int64Counter("madang.customer.created",
		metric.WithDescription("Customers created by name resolution"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "customer counter")
	}

	return &Service{
		store:       store,
		resolver:    customer.NewResolver(o.defaults, o.policy),
		recorder:    order.NewRecorder(o.allowZeroPrice),
		reporter:    history.NewReporter(store.Repos().History, o.historyLimit),
		now:         o.now,
		tracer:      o.tracerProvider.Tracer("madang/sale"),
		submissions: submissions,
		created:     created,
	}, nil
}

// Submit runs the workflow for req. The returned error equals Result.Err.
func (s *Service) Submit(ctx context.Context, req Request) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "sale.Submit")
	defer span.End()

	var (
		lg  = zctx.From(ctx)
		res = Result{State: Idle}
	)
	enter := func(st State) {
		lg.Debug("Sale state", zap.Stringer("from", res.State), zap.Stringer("to", st))
		res.State = st
	}
	stop := func(st State, err error) (Result, error) {
		res.FailedAt = res.State
		res.OrderID, res.CustomerID, res.CustomerCreated = 0, 0, false
		res.Err = err
		enter(st)
		s.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("state", st.String())))
		span.RecordError(err)
		span.SetStatus(codes.Error, st.String())
		return res, err
	}

	enter(Validating)
	name := customer.CanonicalName(req.CustomerName)
	if name == "" {
		return stop(Rejected, apperr.Validation("name", "customer name is required"))
	}
	if req.BookID <= 0 {
		return stop(Rejected, apperr.Validation("bookid", "a book must be selected"))
	}
	price := decimal.Zero
	if req.SalePrice != nil {
		price = *req.SalePrice
	}
	if err := s.recorder.CheckPrice(price); err != nil {
		return stop(Rejected, err)
	}
	date := req.OrderDate
	if date.IsZero() {
		date = s.now()
	}

	enter(ResolvingCustomer)
	err := s.store.WithinTx(ctx, func(ctx context.Context, r Repos) error {
		resolution, err := s.resolver.Resolve(ctx, r.Customers, r.IDs, customer.ResolveRequest{
			Name:       name,
			Address:    req.Address,
			Phone:      req.Phone,
			CustomerID: req.CustomerID,
		})
		if err != nil {
			return errors.Wrap(err, "resolve customer")
		}
		res.CustomerID = resolution.Customer.ID
		res.CustomerCreated = resolution.Created

		enter(RecordingOrder)
		id, err := s.recorder.Record(ctx, r.recorder(), order.RecordRequest{
			CustomerID: resolution.Customer.ID,
			BookID:     req.BookID,
			SalePrice:  price,
			OrderDate:  date,
		})
		if err != nil {
			return errors.Wrap(err, "record order")
		}
		res.OrderID = id
		return nil
	})
	if err != nil {
		return stop(Failed, err)
	}

	enter(Committed)
	s.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("state", Committed.String())))
	if res.CustomerCreated {
		s.created.Add(ctx, 1)
	}
	span.SetAttributes(
		attribute.Int64("madang.order_id", res.OrderID),
		attribute.Int64("madang.customer_id", res.CustomerID),
	)
	lg.Info("Sale committed",
		zap.Int64("order_id", res.OrderID),
		zap.Int64("customer_id", res.CustomerID),
		zap.Bool("customer_created", res.CustomerCreated),
	)

	return res, nil
}

// ResolveCustomer finds or creates a customer in its own unit of work.
func (s *Service) ResolveCustomer(ctx context.Context, req customer.ResolveRequest) (customer.Resolution, error) {
	var out customer.Resolution
	err := s.store.WithinTx(ctx, func(ctx context.Context, r Repos) error {
		var err error
		out, err = s.resolver.Resolve(ctx, r.Customers, r.IDs, req)
		return err
	})
	if err != nil {
		return customer.Resolution{}, err
	}
	if out.Created {
		s.created.Add(ctx, 1)
	}
	return out, nil
}

// RecordOrder records an order for an existing customer in its own unit of
// work and returns the order id.
func (s *Service) RecordOrder(ctx context.Context, req order.RecordRequest) (int64, error) {
	var id int64
	err := s.store.WithinTx(ctx, func(ctx context.Context, r Repos) error {
		var err error
		id, err = s.recorder.Record(ctx, r.recorder(), req)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// NextID returns the key the next insert into t would get. It reserves
// nothing; a concurrent writer may take the key first.
func (s *Service) NextID(ctx context.Context, t ident.Table) (int64, error) {
	var id int64
	err := s.store.WithinTx(ctx, func(ctx context.Context, r Repos) error {
		var err error
		id, err = ident.Next(ctx, r.IDs, t)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// History returns the purchase history of the customers named name.
func (s *Service) History(ctx context.Context, name string) ([]history.Entry, error) {
	return s.reporter.Report(ctx, name)
}

// Histories returns the purchase histories of several names, keyed by name.
func (s *Service) Histories(ctx context.Context, names []string) (map[string][]history.Entry, error) {
	return s.reporter.ReportMany(ctx, names)
}

// Books lists the catalog.
func (s *Service) Books(ctx context.Context) ([]book.Book, error) {
	return s.store.Repos().Books.List(ctx)
}

// Book returns a single catalog entry or book.ErrNotFound.
func (s *Service) Book(ctx context.Context, id int64) (*book.Book, error) {
	return s.store.Repos().Books.GetByID(ctx, id)
}

// Customers lists all customers, or those named name when name is not blank.
func (s *Service) Customers(ctx context.Context, name string) ([]customer.Customer, error) {
	repo := s.store.Repos().Customers
	if name = customer.CanonicalName(name); name != "" {
		return repo.FindByName(ctx, name)
	}
	return repo.List(ctx)
}

// Orders lists all orders.
func (s *Service) Orders(ctx context.Context) ([]order.Order, error) {
	return s.store.Repos().Orders.List(ctx)
}
