package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/eccleston-labs/lfg-hackathon/models"
)

func TestNearbyReports_SkipsUnplottable(t *testing.T) {
	api, db := newTestAPI(t)

	plottable := models.Report{
		ID:       uuid.New(),
		RawText:  "theft near the park",
		Postcode: "S10 5GG",
		Location: &models.GeoPoint{Lat: 53.38, Lng: -1.5},
	}
	unplottable := models.Report{
		ID:       uuid.New(),
		RawText:  "theft, postcode never resolved",
		Postcode: "ZZ99 9ZZ",
	}
	if err := db.Create(&plottable).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&unplottable).Error; err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/reports/nearby?north=54&south=53&east=-1&west=-2", nil)
	rr := httptest.NewRecorder()
	api.NearbyReports(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Reports []reportView `json:"reports"`
		Count   int          `json:"count"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("count = %d, want only the plottable report", resp.Count)
	}
	if resp.Reports[0].ID != plottable.ID {
		t.Errorf("returned %s, want %s", resp.Reports[0].ID, plottable.ID)
	}
	if resp.Reports[0].Coordinates == nil {
		t.Error("plottable report missing coordinates")
	}
}

func TestNearbyReports_InvalidBounds(t *testing.T) {
	api, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/nearby?north=54", nil)
	rr := httptest.NewRecorder()
	api.NearbyReports(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestCreateReport_TextModeRequiresDescriptionAndPostcode(t *testing.T) {
	api, db := newTestAPI(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing description", `{"input_mode":"text","postcode":"S10 5GG"}`},
		{"missing postcode", `{"input_mode":"text","what_happened":"a theft"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/reports",
				strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			api.CreateReport(rr, req)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
		})
	}

	var count int64
	db.Model(&models.Report{}).Count(&count)
	if count != 0 {
		t.Errorf("reports inserted = %d, want 0", count)
	}
}

func TestCreateReport_AudioModeWithoutTranscript(t *testing.T) {
	api, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports",
		strings.NewReader(`{"input_mode":"audio"}`))
	rr := httptest.NewRecorder()
	api.CreateReport(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for missing transcript", rr.Code)
	}
}

func TestCreateReport_AudioModeExtractionFailureIsUpstream(t *testing.T) {
	// The AI client in newTestAPI points at an unreachable host, so
	// server-side extraction fails as a service error, not a caller one.
	api, db := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports",
		strings.NewReader(`{"input_mode":"audio","transcript":"someone stole my bike on High Street"}`))
	rr := httptest.NewRecorder()
	api.CreateReport(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502 for a failing extraction service", rr.Code)
	}

	var count int64
	db.Model(&models.Report{}).Count(&count)
	if count != 0 {
		t.Errorf("reports inserted = %d, want 0", count)
	}
}

func TestCreateReport_TextMode(t *testing.T) {
	api, db := newTestAPI(t)

	body := `{
		"input_mode": "text",
		"postcode": "S10 5GG",
		"what_happened": "Saw a theft outside the shop",
		"when_happened": "Yesterday evening",
		"has_vehicle": true
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", strings.NewReader(body))
	rr := httptest.NewRecorder()
	api.CreateReport(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var report models.Report
	if err := db.First(&report).Error; err != nil {
		t.Fatalf("fetch created report: %v", err)
	}
	if report.RawText != "Saw a theft outside the shop" {
		t.Errorf("raw_text = %q", report.RawText)
	}
	if report.CrimeType != "theft" {
		t.Errorf("crime_type = %q, want default", report.CrimeType)
	}
	if !report.TimeKnown || report.TimeDescription != "Yesterday evening" {
		t.Errorf("time = %q known=%v", report.TimeDescription, report.TimeKnown)
	}
	if !report.HasVehicle {
		t.Error("has_vehicle not carried")
	}
	if report.Location == nil {
		t.Error("location not geocoded")
	}
	if report.Status != "submitted" {
		t.Errorf("status = %q", report.Status)
	}
}
