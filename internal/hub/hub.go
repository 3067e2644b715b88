package hub

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"fusionhub/internal/checkpoint"
	"fusionhub/internal/columnar"
	"fusionhub/internal/domain"
	"fusionhub/internal/fundamental"
	"fusionhub/internal/market"
	"fusionhub/internal/txlog"
)

// Config carries the hub's tunable parameters. Zero values fall back to the
// calibrated defaults.
type Config struct {
	// CheckpointDir holds the per-domain parquet checkpoints. Two hubs must
	// not share one.
	CheckpointDir string

	// TxLogPath is the append-only ingestion log. Defaults to a file inside
	// CheckpointDir.
	TxLogPath string

	DollarBarThreshold float64
	FeatureWindow      int
	IdentityTolerance  float64
	SmoothingAlpha     float64
}

func (c *Config) withDefaults() {
	if c.TxLogPath == "" {
		c.TxLogPath = filepath.Join(c.CheckpointDir, "ingest.log")
	}
	if c.DollarBarThreshold <= 0 {
		c.DollarBarThreshold = market.DefaultDollarBarThreshold
	}
	if c.FeatureWindow <= 0 {
		c.FeatureWindow = market.DefaultWindow
	}
	if c.IdentityTolerance <= 0 {
		c.IdentityTolerance = fundamental.DefaultIdentityTolerance
	}
	if c.SmoothingAlpha <= 0 || c.SmoothingAlpha > 1 {
		c.SmoothingAlpha = fundamental.DefaultSmoothingAlpha
	}
}

// Option configures optional hub dependencies.
type Option func(*Hub)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithMeter enables OTel instrumentation on the given meter.
func WithMeter(meter metric.Meter) Option {
	return func(h *Hub) { h.meter = meter }
}

// Hub owns one logical pipeline: two domain-scoped deferred plans, the
// schema registry, the quality score and the checkpoint namespace. Ingest
// is cheap and never forces computation; Run is the single forcing call.
type Hub struct {
	id     string
	cfg    Config
	logger *slog.Logger
	meter  metric.Meter

	checkpoints *checkpoint.Store
	txlog       *txlog.Writer
	metrics     *Metrics
	alloc       memory.Allocator

	mu       sync.Mutex
	registry map[domain.Domain]map[string]bool
	plans    map[domain.Domain]*columnar.Plan
	tables   map[domain.Domain]*columnar.Frame
	quality  *qualityScore

	// collectHook, when set, observes each domain's materialized frame
	// before checkpointing. Tests use it to force failures.
	collectHook func(domain.Domain, *columnar.Frame) error
}

// New constructs a hub with its own registry, plans and checkpoint store.
func New(cfg Config, opts ...Option) (*Hub, error) {
	cfg.withDefaults()

	h := &Hub{
		id:       uuid.NewString(),
		cfg:      cfg,
		logger:   slog.Default(),
		alloc:    memory.NewGoAllocator(),
		registry: make(map[domain.Domain]map[string]bool),
		plans:    make(map[domain.Domain]*columnar.Plan),
		tables:   make(map[domain.Domain]*columnar.Frame),
		quality:  newQualityScore(),
	}
	for _, dom := range []domain.Domain{domain.Fundamental, domain.Market} {
		h.registry[dom] = make(map[string]bool)
		h.plans[dom] = columnar.NewPlan()
	}
	for _, opt := range opts {
		opt(h)
	}

	store, err := checkpoint.NewStore(cfg.CheckpointDir, h.logger)
	if err != nil {
		return nil, fmt.Errorf("init checkpoint store: %w", err)
	}
	h.checkpoints = store
	h.txlog = txlog.NewWriter(cfg.TxLogPath)

	if h.meter != nil {
		m, err := NewMetrics(h.meter)
		if err != nil {
			return nil, fmt.Errorf("init hub metrics: %w", err)
		}
		h.metrics = m
	}

	h.logger.Info("hub created", "hub_id", h.id, "checkpoint_dir", cfg.CheckpointDir)
	return h, nil
}

// ID returns the hub instance identifier.
func (h *Hub) ID() string { return h.id }

// Ingest accepts one batch for a domain: it normalizes the tagged union
// into a frame, stamps provenance, derives object identity, diffs the
// schema against the registry (new columns are a logged schema-evolution
// event, never an error), and appends the frame to the domain's deferred
// plan. No computation is forced here.
func (h *Hub) Ingest(ctx context.Context, batch Batch, dom domain.Domain, tier domain.Tier) error {
	if !dom.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownDomain, dom)
	}
	if batch.empty() {
		return ErrEmptyBatch
	}

	frame, err := stampProvenance(batch.frame(), tier)
	if err != nil {
		return fmt.Errorf("stamp provenance: %w", err)
	}
	if frame, err = deriveIdentity(frame, dom); err != nil {
		return fmt.Errorf("derive identity: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	reg := h.registry[dom]
	var newColumns []string
	for _, name := range frame.ColumnNames() {
		if !reg[name] {
			reg[name] = true
			newColumns = append(newColumns, name)
		}
	}
	if len(newColumns) > 0 {
		h.logger.InfoContext(ctx, "schema evolution",
			"hub_id", h.id,
			"domain", string(dom),
			"new_columns", newColumns,
		)
	}

	h.plans[dom].Append(frame)

	if err := h.txlog.Append(txlog.Entry{
		Domain:     string(dom),
		SourceTier: string(tier),
		Rows:       frame.NumRows(),
		NewColumns: newColumns,
	}); err != nil {
		// Advisory log only; an ingest never fails on it.
		h.logger.WarnContext(ctx, "transaction log append failed", "error", err)
	}

	h.metrics.recordIngest(ctx, string(dom), frame.NumRows(), len(newColumns))
	return nil
}

// KnownColumns returns the domain's registered column set, sorted order not
// guaranteed. The registry only ever grows.
func (h *Hub) KnownColumns(dom domain.Domain) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var names []string
	for name := range h.registry[dom] {
		names = append(names, name)
	}
	return names
}

// Run forces both plans through their tracks. On success the materialized
// tables are checkpointed and the audit report folds into the quality
// score. On any failure Run falls back to the last checkpoint per domain:
// the call is recovered when at least one domain restores, fatal (original
// error returned) when none does. There is no partial-success state.
func (h *Hub) Run(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	start := time.Now()
	report := &fundamental.AuditReport{}

	results, err := h.execute(ctx, report)
	if err == nil {
		for dom, frame := range results {
			if frame.NumCols() == 0 {
				// Nothing ever ingested for the domain; no checkpoint.
				continue
			}
			if cerr := h.checkpoints.Save(ctx, string(dom), frame); cerr != nil {
				err = fmt.Errorf("checkpoint %s: %w", dom, cerr)
				break
			}
		}
	}

	if err != nil {
		restored := h.recover(ctx)
		if restored == 0 {
			h.metrics.recordRun(ctx, time.Since(start).Seconds(), "fatal")
			return fmt.Errorf("pipeline failed with no checkpoint to recover: %w", err)
		}
		h.logger.WarnContext(ctx, "pipeline recovered from checkpoint",
			"hub_id", h.id,
			"restored_domains", restored,
			"error", err,
		)
		h.metrics.recordRun(ctx, time.Since(start).Seconds(), "recovered")
		return nil
	}

	for dom, frame := range results {
		h.tables[dom] = frame
		// The materialized table becomes the plan's new base: later
		// ingests union onto the last known good state.
		h.plans[dom].Reset(frame)
	}

	for _, factor := range report.QualityFactors() {
		h.quality.apply(factor)
	}

	h.logger.InfoContext(ctx, "pipeline run complete",
		"hub_id", h.id,
		"duration", time.Since(start),
		"identity_violations", report.IdentityViolations,
		"identity_passes", report.IdentityPasses,
		"skipped_groups", report.SkippedGroups,
		"quality_score", h.quality.value()*100,
	)
	h.metrics.recordRun(ctx, time.Since(start).Seconds(), "success")
	h.metrics.recordQuality(ctx, h.quality.value()*100)
	return nil
}

// execute materializes both domain plans concurrently.
func (h *Hub) execute(ctx context.Context, report *fundamental.AuditReport) (map[domain.Domain]*columnar.Frame, error) {
	h.plans[domain.Fundamental].SetSteps(h.fundamentalSteps(report))
	h.plans[domain.Market].SetSteps(h.marketSteps())

	var (
		resultMu sync.Mutex
		results  = make(map[domain.Domain]*columnar.Frame, 2)
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, dom := range []domain.Domain{domain.Fundamental, domain.Market} {
		dom := dom
		g.Go(func() error {
			frame, err := h.plans[dom].Collect(gctx)
			if err != nil {
				return fmt.Errorf("%s track: %w", dom, err)
			}
			if h.collectHook != nil {
				if err := h.collectHook(dom, frame); err != nil {
					return fmt.Errorf("%s track: %w", dom, err)
				}
			}
			resultMu.Lock()
			results[dom] = frame
			resultMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (h *Hub) fundamentalSteps(report *fundamental.AuditReport) []columnar.Step {
	return []columnar.Step{
		{Name: "resolve_conflicts", Apply: fundamental.ResolveConflicts()},
		{Name: "lock_units", Apply: fundamental.LockUnits()},
		{Name: "smooth_values", Apply: fundamental.SmoothValues(h.cfg.SmoothingAlpha)},
		{Name: "heal_accounting_identity", Apply: fundamental.HealAccountingIdentity(h.cfg.IdentityTolerance, report)},
		{Name: "check_benford", Apply: fundamental.CheckBenford(fundamental.DefaultBenfordDeviation, report)},
		{Name: "check_outliers_mad", Apply: fundamental.CheckOutliersMAD(fundamental.DefaultMADThreshold, report)},
	}
}

func (h *Hub) marketSteps() []columnar.Step {
	return []columnar.Step{
		{Name: "sanitize", Apply: market.Sanitize()},
		{Name: "dollar_bars", Apply: market.DollarBars(h.cfg.DollarBarThreshold)},
		{Name: "microstructure", Apply: market.Microstructure()},
		{Name: "alpha_features", Apply: market.AlphaFeatures(h.cfg.FeatureWindow)},
		{Name: "strategy_signal", Apply: market.StrategySignal()},
		{Name: "triple_barrier", Apply: market.TripleBarrier(h.cfg.FeatureWindow, market.BarrierHorizon)},
		{Name: "meta_label", Apply: market.MetaLabel(market.BarrierHorizon)},
		{Name: "execution_cost", Apply: market.ExecutionCost(market.ImpactCoefficient, market.BaselineVolume)},
		{Name: "regime_tuning", Apply: market.RegimeTuning(market.BarrierHorizon, market.HighVolThreshold, market.HighVolBarrierMultiplier)},
	}
}

// recover loads the last good checkpoint for each domain in place of the
// in-memory plan. Partial progress from the failed run is discarded.
func (h *Hub) recover(ctx context.Context) int {
	restored := 0
	for _, dom := range []domain.Domain{domain.Fundamental, domain.Market} {
		frame, err := h.checkpoints.Load(ctx, string(dom))
		if err != nil {
			continue
		}
		h.tables[dom] = frame
		h.plans[dom].Reset(frame)
		restored++
	}
	return restored
}

// AuditScore returns the quality score scaled to (0, 100].
func (h *Hub) AuditScore() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.quality.value() * 100
}

// Frame returns the domain's materialized table.
func (h *Hub) Frame(dom domain.Domain) (*columnar.Frame, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	frame, ok := h.tables[dom]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotMaterialized, dom)
	}
	return frame, nil
}

// Table returns the domain's materialized table as a zero-copy Arrow
// record. The caller owns the record and must Release it.
func (h *Hub) Table(dom domain.Domain) (arrow.Record, error) {
	frame, err := h.Frame(dom)
	if err != nil {
		return nil, err
	}
	return columnar.ToRecord(frame, h.alloc), nil
}
