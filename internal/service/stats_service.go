package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ecocity/waste-api/internal/models"
	appErrors "github.com/ecocity/waste-api/pkg/errors"
	"github.com/ecocity/waste-api/pkg/export"
)

const statsOverviewCacheKey = "stats:overview"

type statsProfileRepository interface {
	List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, error)
	TopByCredits(ctx context.Context) (*models.Profile, error)
}

type statsComplaintRepository interface {
	List(ctx context.Context, filter models.ComplaintFilter) ([]models.Complaint, error)
}

type statsReportRepository interface {
	List(ctx context.Context, filter models.ReportFilter) ([]models.Report, error)
}

type statsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type statsMetrics interface {
	RecordCacheOperation(hit bool)
	ObserveDBQuery(label string, duration time.Duration)
}

// StatsConfig governs overview caching.
type StatsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// StatsService computes the admin analytics snapshot by aggregating the
// materialized record sets in process, the same shape the dashboard derives
// client-side.
type StatsService struct {
	profiles   statsProfileRepository
	complaints statsComplaintRepository
	reports    statsReportRepository
	cache      statsCache
	metrics    statsMetrics
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
	config     StatsConfig
}

// NewStatsService constructs a StatsService instance. Cache and metrics may be nil.
func NewStatsService(profiles statsProfileRepository, complaints statsComplaintRepository, reports statsReportRepository, cache statsCache, metrics statsMetrics, logger *zap.Logger, config StatsConfig) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		profiles:   profiles,
		complaints: complaints,
		reports:    reports,
		cache:      cache,
		metrics:    metrics,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
		config:     config,
	}
}

// Overview returns the derived counts, served from cache when fresh. Cache
// failures degrade to recomputation, never to an error. With refresh set the
// cached snapshot is dropped and recomputed.
func (s *StatsService) Overview(ctx context.Context, refresh bool) (*models.StatsOverview, error) {
	if refresh && s.cacheEnabled() {
		if err := s.cache.DeleteByPattern(ctx, statsOverviewCacheKey); err != nil {
			s.logger.Warn("stats cache invalidate failed", zap.Error(err))
		}
	}

	if !refresh && s.cacheEnabled() {
		var cached models.StatsOverview
		err := s.cache.Get(ctx, statsOverviewCacheKey, &cached)
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(err == nil)
		}
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
	}

	overview, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, statsOverviewCacheKey, overview, s.config.CacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return overview, nil
}

// GreenChampion returns the citizen with the maximal credit balance, or nil
// when no citizen profiles exist yet.
func (s *StatsService) GreenChampion(ctx context.Context) (*models.GreenChampion, error) {
	top, err := s.profiles.TopByCredits(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no citizen profiles yet")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to find green champion")
	}

	return &models.GreenChampion{ID: top.ID, Name: top.Name, Credits: top.Credits}, nil
}

// ExportComplaints renders the complaint roster in the requested format
// (csv or pdf) and returns the bytes with their content type.
func (s *StatsService) ExportComplaints(ctx context.Context, format string) ([]byte, string, error) {
	complaints, err := s.complaints.List(ctx, models.ComplaintFilter{})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}

	dataset := export.Dataset{
		Headers: []string{"ID", "Name", "Location", "Status", "Worker", "Created"},
		Rows:    make([]map[string]string, 0, len(complaints)),
	}
	for _, c := range complaints {
		worker := ""
		if c.AssignedWorkerName != nil {
			worker = *c.AssignedWorkerName
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":       c.ID,
			"Name":     c.Name,
			"Location": c.Location,
			"Status":   string(c.Status),
			"Worker":   worker,
			"Created":  c.CreatedAt.Format(time.RFC3339),
		})
	}

	switch strings.ToLower(format) {
	case "csv", "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Complaint Roster")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func (s *StatsService) cacheEnabled() bool {
	return s.config.CacheEnabled && s.cache != nil
}

func (s *StatsService) observeQuery(label string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDBQuery(label, time.Since(start))
	}
}

func (s *StatsService) compute(ctx context.Context) (*models.StatsOverview, error) {
	role := models.RoleUser
	start := time.Now()
	profiles, err := s.profiles.List(ctx, models.ProfileFilter{Role: &role})
	s.observeQuery("stats_profiles", start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list profiles")
	}
	start = time.Now()
	complaints, err := s.complaints.List(ctx, models.ComplaintFilter{})
	s.observeQuery("stats_complaints", start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	start = time.Now()
	reports, err := s.reports.List(ctx, models.ReportFilter{})
	s.observeQuery("stats_reports", start)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}

	overview := &models.StatsOverview{
		TotalUsers:      len(profiles),
		TotalComplaints: len(complaints),
		TotalReports:    len(reports),
		GeneratedAt:     time.Now().UTC(),
	}

	for _, p := range profiles {
		overview.TotalCredits += p.Credits
		if p.Credits > 0 {
			overview.ActiveUsers++
		}
	}
	for _, c := range complaints {
		switch c.Status {
		case models.ComplaintPending:
			overview.PendingComplaints++
		case models.ComplaintAssigned:
			overview.AssignedComplaints++
		case models.ComplaintCompleted:
			overview.ResolvedComplaints++
		}
	}
	for _, r := range reports {
		if r.Status == models.ReportPending {
			overview.PendingReports++
		}
	}

	overview.ResolutionRate = percent(overview.ResolvedComplaints, overview.TotalComplaints)
	overview.EngagementRate = percent(overview.ActiveUsers, overview.TotalUsers)
	return overview, nil
}

// percent rounds to the nearest whole percent; zero denominators yield 0.
func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
