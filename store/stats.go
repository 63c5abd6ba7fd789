package store

import (
	"context"
	"fmt"
	"time"

	"github.com/eccleston-labs/lfg-hackathon/models"
)

// DashboardStats aggregates the report collection for the dashboard.
type DashboardStats struct {
	TotalReports  int64            `json:"total_reports"`
	WithVehicle   int64            `json:"with_vehicle"`
	WithWeapon    int64            `json:"with_weapon"`
	LastSevenDays int64            `json:"last_seven_days"`
	Summarized    int64            `json:"summarized"`
	ByCrimeType   map[string]int64 `json:"by_crime_type"`
}

// Stats computes dashboard aggregates over all reports.
func (s *Store) Stats(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx).Model(&models.Report{})
	stats := &DashboardStats{ByCrimeType: make(map[string]int64)}

	if err := db.Count(&stats.TotalReports).Error; err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	s.db.WithContext(ctx).Model(&models.Report{}).Where("has_vehicle = ?", true).Count(&stats.WithVehicle)
	s.db.WithContext(ctx).Model(&models.Report{}).Where("has_weapon = ?", true).Count(&stats.WithWeapon)
	s.db.WithContext(ctx).Model(&models.Report{}).Where("ai_summary IS NOT NULL").Count(&stats.Summarized)
	s.db.WithContext(ctx).Model(&models.Report{}).
		Where("created_at >= ?", time.Now().UTC().AddDate(0, 0, -7)).
		Count(&stats.LastSevenDays)

	rows := []struct {
		CrimeType string
		Count     int64
	}{}
	if err := s.db.WithContext(ctx).Model(&models.Report{}).
		Select("crime_type, count(*) as count").
		Group("crime_type").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	for _, row := range rows {
		stats.ByCrimeType[row.CrimeType] = row.Count
	}

	return stats, nil
}
