package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biztools-dev/biztools/internal/models"
)

type fakeUsageStats struct {
	total         int64
	byAction      map[string]int64
	topTools      []map[string]interface{}
	dailyAll      []map[string]interface{}
	dailyByTool   map[string][]map[string]interface{}
	toolSeriesFor string
	deletedBefore time.Time
}

func (f *fakeUsageStats) CountByTimeRange(ctx context.Context, from, to time.Time) (int64, error) {
	return f.total, nil
}

func (f *fakeUsageStats) CountByAction(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	return f.byAction, nil
}

func (f *fakeUsageStats) GetTopTools(ctx context.Context, from, to time.Time, limit int) ([]map[string]interface{}, error) {
	return f.topTools, nil
}

func (f *fakeUsageStats) GetDailySeries(ctx context.Context, from, to time.Time) ([]map[string]interface{}, error) {
	return f.dailyAll, nil
}

func (f *fakeUsageStats) GetToolDailySeries(ctx context.Context, toolSlug string, from, to time.Time) ([]map[string]interface{}, error) {
	f.toolSeriesFor = toolSlug
	return f.dailyByTool[toolSlug], nil
}

func (f *fakeUsageStats) DeleteOldLogs(ctx context.Context, before time.Time) (int64, error) {
	f.deletedBefore = before
	return 7, nil
}

type fakeCalculations struct {
	count  int64
	recent []models.Calculation
}

func (f *fakeCalculations) CountByTool(ctx context.Context, toolSlug string, from, to time.Time) (int64, error) {
	return f.count, nil
}

func (f *fakeCalculations) FindByTool(ctx context.Context, toolSlug string, from, to time.Time, limit, offset int) ([]models.Calculation, error) {
	return f.recent, nil
}

func (f *fakeCalculations) DeleteOld(ctx context.Context, before time.Time) (int64, error) {
	return 3, nil
}

func day(offset int) time.Time {
	return time.Date(2026, 8, 1+offset, 0, 0, 0, 0, time.UTC)
}

func TestGetToolStatsUsesToolScopedSeries(t *testing.T) {
	usage := &fakeUsageStats{
		dailyAll: []map[string]interface{}{
			{"day": day(0), "count": int64(900)},
		},
		dailyByTool: map[string][]map[string]interface{}{
			"roi-calculator": {
				{"day": day(0), "count": int64(4)},
				{"day": day(1), "count": int64(9)},
			},
		},
	}
	calcs := &fakeCalculations{
		count: 13,
		recent: []models.Calculation{
			{ToolSlug: "roi-calculator", InputData: json.RawMessage(`{"investment":10000}`)},
		},
	}
	svc := NewAnalyticsService(usage, calcs)

	stats, err := svc.GetToolStats(context.Background(), "roi-calculator", day(0), day(30))
	require.NoError(t, err)

	assert.Equal(t, "roi-calculator", usage.toolSeriesFor)
	require.Len(t, stats.DailySeries, 2)
	assert.Equal(t, int64(4), stats.DailySeries[0].Count)
	assert.Equal(t, int64(9), stats.DailySeries[1].Count)
	assert.Equal(t, int64(13), stats.TotalRuns)

	require.Len(t, stats.Recent, 1)
	assert.Equal(t, "roi-calculator", stats.Recent[0].ToolSlug)
	assert.JSONEq(t, `{"investment":10000}`, string(stats.Recent[0].InputData))
}

func TestGetSummaryComputesConversionRate(t *testing.T) {
	usage := &fakeUsageStats{
		total: 150,
		byAction: map[string]int64{
			models.ActionView:      100,
			models.ActionCalculate: 30,
			models.ActionGenerate:  20,
		},
		topTools: []map[string]interface{}{
			{"tool_slug": "roi-calculator", "count": int64(80)},
		},
	}
	svc := NewAnalyticsService(usage, &fakeCalculations{})

	summary, err := svc.GetSummary(context.Background(), day(0), day(30))
	require.NoError(t, err)

	assert.Equal(t, int64(150), summary.TotalEvents)
	assert.Equal(t, int64(100), summary.Views)
	assert.Equal(t, 50.0, summary.ConversionRate)
	require.Len(t, summary.TopTools, 1)
}

func TestGetSummaryEmptyRangeShortCircuits(t *testing.T) {
	svc := NewAnalyticsService(&fakeUsageStats{total: 0}, &fakeCalculations{})

	summary, err := svc.GetSummary(context.Background(), day(0), day(30))
	require.NoError(t, err)
	assert.Zero(t, summary.TotalEvents)
	assert.Zero(t, summary.ConversionRate)
}

func TestCleanupOldLogsSumsBothStores(t *testing.T) {
	usage := &fakeUsageStats{}
	svc := NewAnalyticsService(usage, &fakeCalculations{})

	deleted, err := svc.CleanupOldLogs(context.Background(), 90)
	require.NoError(t, err)
	assert.Equal(t, int64(10), deleted)

	wantCutoff := time.Now().AddDate(0, 0, -90)
	assert.WithinDuration(t, wantCutoff, usage.deletedBefore, time.Minute)
}
