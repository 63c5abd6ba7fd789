package models

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"gorm.io/datatypes"
)

// Report is a community crime report. Rows are immutable after creation
// except ai_summary, which is back-filled once by the summarizer.
type Report struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	RawText         string `gorm:"type:text;not null" json:"raw_text"`
	CrimeType       string `gorm:"size:100" json:"crime_type"`
	LocationHint    string `gorm:"type:text" json:"location_hint"`
	Postcode        string `gorm:"size:20" json:"postcode"`
	TimeKnown       bool   `gorm:"default:false" json:"time_known"`
	TimeDescription string `gorm:"type:text" json:"time_description"`

	PeopleDescription string `gorm:"type:text" json:"people_description"`
	PeopleNames       string `gorm:"type:text" json:"people_names"`
	PeopleAppearance  string `gorm:"type:text" json:"people_appearance"`
	PeopleContactInfo string `gorm:"type:text" json:"people_contact_info"`

	HasVehicle              bool   `gorm:"default:false" json:"has_vehicle"`
	HasWeapon               bool   `gorm:"default:false" json:"has_weapon"`
	IsAnonymous             bool   `gorm:"default:true" json:"is_anonymous"`
	SharedWithCrimestoppers bool   `gorm:"default:false" json:"shared_with_crimestoppers"`
	Status                  string `gorm:"size:50;default:'submitted'" json:"status"`

	// Canonical persisted location. NULL when the postcode could not be
	// resolved at submission time; such reports are never plotted.
	Location *GeoPoint `gorm:"type:text" json:"location,omitempty"`

	// Raw extractor output for audio submissions, kept for audit.
	Extracted datatypes.JSON `gorm:"type:jsonb" json:"extracted,omitempty"`

	AISummary *string   `gorm:"column:ai_summary;type:text" json:"ai_summary,omitempty"`
	UserID    uuid.UUID `gorm:"type:uuid" json:"user_id"`

	// Relationships
	Photos []ReportPhoto `gorm:"foreignKey:ReportID" json:"photos,omitempty"`
}

// TableName specifies the table name for Report
func (Report) TableName() string {
	return "reports"
}

// ReportPhoto is an uploaded photo attached to a report. Insertion order
// is display order; rows are never mutated.
type ReportPhoto struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ReportID   uuid.UUID `gorm:"type:uuid;index;not null" json:"report_id"`
	FilePath   string    `gorm:"type:text;not null" json:"file_path"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// TableName specifies the table name for ReportPhoto
func (ReportPhoto) TableName() string {
	return "report_photos"
}

// GeoPoint stores a latitude/longitude pair as a WKT POINT. The text form
// is POINT(lat lng), matching what the submission pipeline has always
// written, so lat comes first on the wire.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Point returns the orb representation (x=lng, y=lat).
func (g GeoPoint) Point() orb.Point {
	return orb.Point{g.Lng, g.Lat}
}

// Value implements the driver.Valuer interface for GeoPoint
func (g GeoPoint) Value() (driver.Value, error) {
	return fmt.Sprintf("POINT(%v %v)", g.Lat, g.Lng), nil
}

// Scan implements the sql.Scanner interface for GeoPoint
func (g *GeoPoint) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("GeoPoint.Scan: unsupported type %T", value)
	}

	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "POINT(") || !strings.HasSuffix(s, ")") {
		return fmt.Errorf("GeoPoint.Scan: cannot parse %q", s)
	}

	parts := strings.Fields(s[len("POINT(") : len(s)-1])
	if len(parts) != 2 {
		return fmt.Errorf("GeoPoint.Scan: cannot parse %q", s)
	}

	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return fmt.Errorf("GeoPoint.Scan: bad latitude in %q: %w", s, err)
	}
	lng, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return fmt.Errorf("GeoPoint.Scan: bad longitude in %q: %w", s, err)
	}

	g.Lat = lat
	g.Lng = lng
	return nil
}
