// Package collector runs a full collection: every provider is fetched and saved, then
// the results are reconciled and saved as one snapshot.
package collector

import (
	"context"
	"errors"
	"fmt"
	"yst-fantasy/internal/components/assert"
	"yst-fantasy/internal/components/telemetry"
	"yst-fantasy/internal/reconcile"
	"yst-fantasy/internal/snapshot"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("yst.collector")

const (
	report_collector_fetch     = "collector.fetch"
	report_collector_save      = "collector.save"
	report_collector_skip      = "collector.skip"
	report_collector_ambiguous = "collector.ambiguous"
	report_collector_malformed = "collector.malformed"
	report_collector_near_miss = "collector.near-miss"
	report_collector_records   = "collector.records"
	report_collector_stats     = "collector.process-stats"
)

// ErrAllProvidersFailed is returned when no provider could be fetched.
var ErrAllProvidersFailed = errors.New("every provider failed")

// Fetcher lists the players of a single provider.
type Fetcher interface {
	GetPlayers(ctx context.Context) ([]reconcile.RawPlayer, error)
}

type Options struct {
	// Fetchers holds a fetcher per provider, a missing provider is skipped and treated
	// as if it returned no players.
	Fetchers   map[reconcile.Provider]Fetcher
	Writer     snapshot.Writer
	Reconciler reconcile.Reconciler
	// RecordStats records process resource usage at the end of a run.
	RecordStats bool
}

type Collector struct {
	opts Options
	tel  telemetry.API
}

func NewCollector(opts Options, tel telemetry.API) Collector {
	assert.NotNil(tel)
	return Collector{opts: opts, tel: telemetry.NewScopedAPI("collector", tel)}
}

type ProviderSummary struct {
	Provider reconcile.Provider
	Players  int
	// Path is the raw snapshot written, it is empty if the provider was skipped or failed.
	Path    string
	Skipped bool
	Err     error
}

type Summary struct {
	Providers         []ProviderSummary
	Result            reconcile.Result
	ComprehensivePath string
	Process           telemetry.ProcessStats
}

// Fetch gets a single provider's players and writes them to a raw snapshot.
func (c Collector) Fetch(ctx context.Context, provider reconcile.Provider) ([]reconcile.RawPlayer, string, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("provider", provider.String()))

	fetcher, ok := c.opts.Fetchers[provider]
	if !ok || fetcher == nil {
		return nil, "", fmt.Errorf("%s is not configured", provider)
	}

	players, err := fetcher.GetPlayers(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch players")
		c.tel.ReportBroken(report_collector_fetch, provider.String(), err)
		return nil, "", err
	}
	c.tel.ReportCount(fmt.Sprintf("%s.%s", report_collector_fetch, provider), int64(len(players)))

	path, err := c.opts.Writer.WriteRaw(provider, players)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save snapshot")
		c.tel.ReportBroken(report_collector_save, provider.String(), err)
		return nil, "", err
	}
	return players, path, nil
}

// Run fetches the providers one after another, reconciles what was fetched and saves
// the merged records. A failed provider is treated as empty, the run only fails if
// every provider failed or a snapshot could not be written.
func (c Collector) Run(ctx context.Context) (Summary, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	var (
		summary Summary
		fetched int
	)
	inputs := map[reconcile.Provider][]reconcile.RawPlayer{}
	for _, provider := range reconcile.Providers {
		ps := ProviderSummary{Provider: provider}

		if c.opts.Fetchers[provider] == nil {
			ps.Skipped = true
			c.tel.ReportWarning(report_collector_skip, provider.String())
			summary.Providers = append(summary.Providers, ps)
			continue
		}

		players, path, err := c.Fetch(ctx, provider)
		if err != nil {
			ps.Err = err
			summary.Providers = append(summary.Providers, ps)
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			continue
		}
		ps.Players = len(players)
		ps.Path = path
		summary.Providers = append(summary.Providers, ps)
		inputs[provider] = players
		fetched++
	}

	if fetched == 0 {
		span.SetStatus(codes.Error, ErrAllProvidersFailed.Error())
		var errs []error
		for _, ps := range summary.Providers {
			if ps.Err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", ps.Provider, ps.Err))
			}
		}
		return summary, errors.Join(append([]error{ErrAllProvidersFailed}, errs...)...)
	}

	result := c.opts.Reconciler.Reconcile(
		inputs[reconcile.ProviderYahoo],
		inputs[reconcile.ProviderSleeper],
		inputs[reconcile.ProviderTank01],
	)
	summary.Result = result
	c.report(result.Report)

	path, err := c.opts.Writer.WriteComprehensive(result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save comprehensive snapshot")
		c.tel.ReportBroken(report_collector_save, "comprehensive", err)
		return summary, err
	}
	summary.ComprehensivePath = path

	if c.opts.RecordStats {
		stats, err := telemetry.RecordProcessStats(ctx, c.tel)
		if err != nil {
			c.tel.ReportWarning(report_collector_stats, err)
		}
		summary.Process = stats
	}

	return summary, nil
}

func (c Collector) report(report reconcile.Report) {
	c.tel.ReportCount(report_collector_records, int64(report.Records))
	for _, p := range reconcile.Providers {
		if report.Ambiguous[p] > 0 {
			c.tel.ReportWarning(report_collector_ambiguous, p.String(), report.Ambiguous[p])
		}
		if !report.Accounted(p) {
			c.tel.ReportBroken(report_collector_records, p.String(), "input records are unaccounted for")
		}
	}
	for _, m := range report.Malformed {
		c.tel.ReportWarning(report_collector_malformed, m)
	}
	for _, nm := range report.NearMisses {
		c.tel.ReportDebug(report_collector_near_miss, nm.Left, nm.Right, nm.Team, nm.Similarity)
	}
}
