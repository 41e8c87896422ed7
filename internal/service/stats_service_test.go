package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecocity/waste-api/internal/models"
	appErrors "github.com/ecocity/waste-api/pkg/errors"
)

type mockStatsProfiles struct {
	profiles []models.Profile
}

func (m *mockStatsProfiles) List(_ context.Context, filter models.ProfileFilter) ([]models.Profile, error) {
	var list []models.Profile
	for _, p := range m.profiles {
		if filter.Role != nil && p.Role != *filter.Role {
			continue
		}
		list = append(list, p)
	}
	return list, nil
}

func (m *mockStatsProfiles) TopByCredits(_ context.Context) (*models.Profile, error) {
	var top *models.Profile
	for i := range m.profiles {
		p := &m.profiles[i]
		if p.Role != models.RoleUser {
			continue
		}
		if top == nil || p.Credits > top.Credits ||
			(p.Credits == top.Credits && p.CreatedAt.Before(top.CreatedAt)) {
			top = p
		}
	}
	if top == nil {
		return nil, sql.ErrNoRows
	}
	return top, nil
}

type mockStatsComplaints struct {
	complaints []models.Complaint
}

func (m *mockStatsComplaints) List(_ context.Context, _ models.ComplaintFilter) ([]models.Complaint, error) {
	return m.complaints, nil
}

type mockStatsReports struct {
	reports []models.Report
}

func (m *mockStatsReports) List(_ context.Context, _ models.ReportFilter) ([]models.Report, error) {
	return m.reports, nil
}

type mockStatsCache struct {
	entries map[string][]byte
	sets    int
	deletes int
}

func (m *mockStatsCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockStatsCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	m.sets++
	return nil
}

func (m *mockStatsCache) DeleteByPattern(_ context.Context, _ string) error {
	m.entries = nil
	m.deletes++
	return nil
}

func TestStatsServiceOverviewAggregates(t *testing.T) {
	profiles := &mockStatsProfiles{profiles: []models.Profile{
		{ID: "p1", Role: models.RoleUser, Credits: 240},
		{ID: "p2", Role: models.RoleUser, Credits: 0},
		{ID: "p3", Role: models.RoleUser, Credits: 60},
		{ID: "padmin", Role: models.RoleAdmin, Credits: 0},
	}}
	complaints := &mockStatsComplaints{complaints: []models.Complaint{
		{Status: models.ComplaintPending},
		{Status: models.ComplaintAssigned},
		{Status: models.ComplaintCompleted},
		{Status: models.ComplaintCompleted},
	}}
	reports := &mockStatsReports{reports: []models.Report{
		{Status: models.ReportPending},
		{Status: models.ReportResolved},
	}}
	svc := NewStatsService(profiles, complaints, reports, nil, nil, zap.NewNop(), StatsConfig{})

	overview, err := svc.Overview(context.Background(), false)
	require.NoError(t, err)

	// Admin profile excluded from user counts.
	assert.Equal(t, 3, overview.TotalUsers)
	assert.Equal(t, 4, overview.TotalComplaints)
	assert.Equal(t, 2, overview.TotalReports)
	assert.Equal(t, 300, overview.TotalCredits)
	assert.Equal(t, 1, overview.PendingComplaints)
	assert.Equal(t, 1, overview.AssignedComplaints)
	assert.Equal(t, 2, overview.ResolvedComplaints)
	assert.Equal(t, 1, overview.PendingReports)
	assert.Equal(t, 2, overview.ActiveUsers)
	assert.Equal(t, 50, overview.ResolutionRate)
	assert.Equal(t, 67, overview.EngagementRate)
}

func TestStatsServiceOverviewUsesCache(t *testing.T) {
	profiles := &mockStatsProfiles{profiles: []models.Profile{{ID: "p1", Role: models.RoleUser, Credits: 10}}}
	cache := &mockStatsCache{}
	svc := NewStatsService(profiles, &mockStatsComplaints{}, &mockStatsReports{}, cache, nil, zap.NewNop(), StatsConfig{
		CacheEnabled: true,
		CacheTTL:     time.Minute,
	})

	first, err := svc.Overview(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// Data changes, but the cached snapshot is served until TTL expiry.
	profiles.profiles = append(profiles.profiles, models.Profile{ID: "p2", Role: models.RoleUser, Credits: 20})
	second, err := svc.Overview(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, first.TotalUsers, second.TotalUsers)
	assert.Equal(t, 1, cache.sets)

	// Refresh drops the snapshot and recomputes.
	third, err := svc.Overview(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.deletes)
	assert.Equal(t, 2, third.TotalUsers)
	assert.Equal(t, 2, cache.sets)
}

func TestStatsServiceGreenChampion(t *testing.T) {
	earlier := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := earlier.Add(time.Hour)
	profiles := &mockStatsProfiles{profiles: []models.Profile{
		{ID: "p1", Name: "Asha Verma", Role: models.RoleUser, Credits: 240, CreatedAt: later},
		{ID: "p2", Name: "Ravi Kumar", Role: models.RoleUser, Credits: 240, CreatedAt: earlier},
		{ID: "padmin", Name: "City Admin", Role: models.RoleAdmin, Credits: 999},
	}}
	svc := NewStatsService(profiles, &mockStatsComplaints{}, &mockStatsReports{}, nil, nil, zap.NewNop(), StatsConfig{})

	// Tie resolves to the earliest created profile; admins never qualify.
	champion, err := svc.GreenChampion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p2", champion.ID)
	assert.Equal(t, "Ravi Kumar", champion.Name)
	assert.Equal(t, 240, champion.Credits)
}

func TestStatsServiceGreenChampionEmpty(t *testing.T) {
	svc := NewStatsService(&mockStatsProfiles{}, &mockStatsComplaints{}, &mockStatsReports{}, nil, nil, zap.NewNop(), StatsConfig{})

	_, err := svc.GreenChampion(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStatsServiceExportComplaints(t *testing.T) {
	worker := "Alpha Recyclers"
	complaints := &mockStatsComplaints{complaints: []models.Complaint{
		{ID: "c1", Name: "Overflowing bin", Location: "5th Street", Status: models.ComplaintAssigned, AssignedWorkerName: &worker},
	}}
	svc := NewStatsService(&mockStatsProfiles{}, complaints, &mockStatsReports{}, nil, nil, zap.NewNop(), StatsConfig{})

	payload, contentType, err := svc.ExportComplaints(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	body := string(payload)
	assert.True(t, strings.HasPrefix(body, "ID,Name,Location,Status,Worker,Created"))
	assert.Contains(t, body, "Alpha Recyclers")

	payload, contentType, err = svc.ExportComplaints(context.Background(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.NotEmpty(t, payload)

	_, _, err = svc.ExportComplaints(context.Background(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
