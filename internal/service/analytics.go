package service

import (
	"context"
	"time"

	"github.com/biztools-dev/biztools/internal/models"
)

// usageStatsStore is the slice of the usage log repository analytics reads.
type usageStatsStore interface {
	CountByTimeRange(ctx context.Context, from, to time.Time) (int64, error)
	CountByAction(ctx context.Context, from, to time.Time) (map[string]int64, error)
	GetTopTools(ctx context.Context, from, to time.Time, limit int) ([]map[string]interface{}, error)
	GetDailySeries(ctx context.Context, from, to time.Time) ([]map[string]interface{}, error)
	GetToolDailySeries(ctx context.Context, toolSlug string, from, to time.Time) ([]map[string]interface{}, error)
	DeleteOldLogs(ctx context.Context, before time.Time) (int64, error)
}

// calculationStore is the slice of the calculation repository analytics reads.
type calculationStore interface {
	CountByTool(ctx context.Context, toolSlug string, from, to time.Time) (int64, error)
	FindByTool(ctx context.Context, toolSlug string, from, to time.Time, limit, offset int) ([]models.Calculation, error)
	DeleteOld(ctx context.Context, before time.Time) (int64, error)
}

type AnalyticsService struct {
	usage usageStatsStore
	calcs calculationStore
}

func NewAnalyticsService(usage usageStatsStore, calcs calculationStore) *AnalyticsService {
	return &AnalyticsService{
		usage: usage,
		calcs: calcs,
	}
}

// Holds usage summary data for the whole catalog
type UsageSummary struct {
	TotalEvents    int64                    `json:"total_events"`
	Views          int64                    `json:"views"`
	Calculations   int64                    `json:"calculations"`
	Generations    int64                    `json:"generations"`
	ConversionRate float64                  `json:"conversion_rate"`
	TopTools       []map[string]interface{} `json:"top_tools"`
}

// Holds time-series usage data
type DailyUsage struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

// Holds usage data for one tool
type ToolStats struct {
	ToolSlug    string               `json:"tool_slug"`
	TotalRuns   int64                `json:"total_runs"`
	DailySeries []DailyUsage         `json:"daily_series"`
	Recent      []models.Calculation `json:"recent"`
}

// Retrieves usage summary for a time range
func (s *AnalyticsService) GetSummary(ctx context.Context, from, to time.Time) (*UsageSummary, error) {
	summary := &UsageSummary{}

	total, err := s.usage.CountByTimeRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary.TotalEvents = total

	if total == 0 {
		return summary, nil
	}

	byAction, err := s.usage.CountByAction(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary.Views = byAction[models.ActionView]
	summary.Calculations = byAction[models.ActionCalculate]
	summary.Generations = byAction[models.ActionGenerate]

	// Share of views that turned into a tool run
	runs := summary.Calculations + summary.Generations
	if summary.Views > 0 {
		summary.ConversionRate = (float64(runs) / float64(summary.Views)) * 100
	}

	topTools, err := s.usage.GetTopTools(ctx, from, to, 10)
	if err != nil {
		return nil, err
	}
	summary.TopTools = topTools

	return summary, nil
}

// Retrieves the catalog-wide daily usage series for a time range
func (s *AnalyticsService) GetDailySeries(ctx context.Context, from, to time.Time) ([]DailyUsage, error) {
	rows, err := s.usage.GetDailySeries(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return toDailySeries(rows), nil
}

// Retrieves usage stats for a single tool. The daily series and recent runs
// cover only that tool.
func (s *AnalyticsService) GetToolStats(ctx context.Context, toolSlug string, from, to time.Time) (*ToolStats, error) {
	total, err := s.calcs.CountByTool(ctx, toolSlug, from, to)
	if err != nil {
		return nil, err
	}

	recent, err := s.calcs.FindByTool(ctx, toolSlug, from, to, 20, 0)
	if err != nil {
		return nil, err
	}

	rows, err := s.usage.GetToolDailySeries(ctx, toolSlug, from, to)
	if err != nil {
		return nil, err
	}

	return &ToolStats{
		ToolSlug:    toolSlug,
		TotalRuns:   total,
		DailySeries: toDailySeries(rows),
		Recent:      recent,
	}, nil
}

// Deletes usage data older than the retention period
func (s *AnalyticsService) CleanupOldLogs(ctx context.Context, retentionDays int) (int64, error) {
	cutOffDate := time.Now().AddDate(0, 0, -retentionDays)

	deleted, err := s.usage.DeleteOldLogs(ctx, cutOffDate)
	if err != nil {
		return deleted, err
	}

	calcsDeleted, err := s.calcs.DeleteOld(ctx, cutOffDate)
	return deleted + calcsDeleted, err
}

func toDailySeries(rows []map[string]interface{}) []DailyUsage {
	series := make([]DailyUsage, 0, len(rows))
	for _, row := range rows {
		series = append(series, DailyUsage{
			Day:   row["day"].(time.Time),
			Count: row["count"].(int64),
		})
	}
	return series
}
