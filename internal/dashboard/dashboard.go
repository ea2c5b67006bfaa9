// Package dashboard loads the data behind the admin dashboard and analytics
// views with concurrent API calls.
package dashboard

import (
	"context"
	"log/slog"

	"github.com/Joeboy77/drug-guard-fe/drugguard"
	"github.com/Joeboy77/drug-guard-fe/logger"
	"golang.org/x/sync/errgroup"
)

// ExpiryWindowDays is the horizon of the admin summary's expiring list.
const ExpiryWindowDays = 30

// AdminAPI is the part of the client the admin summary needs.
type AdminAPI interface {
	DrugStatistics(ctx context.Context) (*drugguard.Aggregate, error)
	ScanStatistics(ctx context.Context) (*drugguard.Aggregate, error)
	DrugsExpiringSoon(ctx context.Context, days int) ([]drugguard.Drug, error)
}

type AdminSummary struct {
	DrugStats    *drugguard.Aggregate
	ScanStats    *drugguard.Aggregate
	ExpiringSoon []drugguard.Drug
}

// LoadAdminSummary fetches the three summary sections concurrently. The
// first failure cancels the others and is returned alone.
func LoadAdminSummary(ctx context.Context, api AdminAPI) (*AdminSummary, error) {
	var s AdminSummary
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		s.DrugStats, err = api.DrugStatistics(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		s.ScanStats, err = api.ScanStatistics(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		s.ExpiringSoon, err = api.DrugsExpiringSoon(ctx, ExpiryWindowDays)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &s, nil
}

// AnalyticsAPI is the part of the client the analytics view needs.
type AnalyticsAPI interface {
	OverviewStats(ctx context.Context) (*drugguard.OverviewStats, error)
	DrugAnalytics(ctx context.Context) (*drugguard.DrugAnalytics, error)
	ScanAnalytics(ctx context.Context, days int) (*drugguard.ScanAnalytics, error)
}

// Section is one independently loaded part of the analytics view. When the
// fetch failed, Err is set and Data holds sample data with Fallback true.
type Section[T any] struct {
	Data     T
	Err      error
	Fallback bool
}

type Analytics struct {
	Overview Section[drugguard.OverviewStats]
	Drugs    Section[drugguard.DrugAnalytics]
	Scans    Section[drugguard.ScanAnalytics]
}

// Degraded reports whether any section is showing fallback data.
func (a *Analytics) Degraded() bool {
	return a.Overview.Fallback || a.Drugs.Fallback || a.Scans.Fallback
}

// LoadAnalytics fetches every section concurrently. A failing section never
// affects the others and LoadAnalytics itself cannot fail.
func LoadAnalytics(ctx context.Context, api AnalyticsAPI, days int) *Analytics {
	var a Analytics
	var g errgroup.Group

	g.Go(func() error {
		loadSection(ctx, "overview", &a.Overview, api.OverviewStats, FallbackOverview)
		return nil
	})
	g.Go(func() error {
		loadSection(ctx, "drugs", &a.Drugs, api.DrugAnalytics, FallbackDrugAnalytics)
		return nil
	})
	g.Go(func() error {
		scans := func(ctx context.Context) (*drugguard.ScanAnalytics, error) {
			return api.ScanAnalytics(ctx, days)
		}
		loadSection(ctx, "scans", &a.Scans, scans, FallbackScanAnalytics)
		return nil
	})
	_ = g.Wait()

	return &a
}

func loadSection[T any](ctx context.Context, name string, s *Section[T], fetch func(context.Context) (*T, error), fallback func() T) {
	data, err := fetch(ctx)
	if err == nil && data != nil {
		s.Data = *data
		return
	}
	logger.WarnContext(ctx, "Analytics section unavailable, showing sample data",
		slog.String("section", name), slog.String("error", drugguard.ErrorMessage(err)))
	s.Err = err
	s.Data = fallback()
	s.Fallback = true
}
