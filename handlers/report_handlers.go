package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/paulmach/orb"

	"github.com/eccleston-labs/lfg-hackathon/middleware"
	"github.com/eccleston-labs/lfg-hackathon/models"
	"github.com/eccleston-labs/lfg-hackathon/pkg/ai"
	"github.com/eccleston-labs/lfg-hackathon/pkg/geocode"
)

// postcodePattern matches a UK postcode embedded in free text, used to
// pull a geocodable postcode out of AI-extracted locations.
var postcodePattern = regexp.MustCompile(`(?i)[A-Z]{1,2}\d{1,2}[A-Z]?\s?\d[A-Z]{2}`)

// CreateReportRequest is the primary submission body. Text mode carries
// the form fields; audio mode carries the transcript and, optionally,
// fields already extracted from it.
type CreateReportRequest struct {
	InputMode string `json:"input_mode"` // "text" or "audio"

	// Text mode
	Postcode         string         `json:"postcode"`
	AddressDetails   string         `json:"address_details"`
	WhenHappened     string         `json:"when_happened"`
	WhatHappened     string         `json:"what_happened"`
	PeopleDetails    string         `json:"people_details"`
	PeopleAppearance string         `json:"people_appearance"`
	ContactDetails   string         `json:"contact_details"`
	HasVehicle       bool           `json:"has_vehicle"`
	HasWeapon        bool           `json:"has_weapon"`
	SelectedPlace    *geocode.Place `json:"selected_place,omitempty"`

	// Audio mode
	Transcript string              `json:"transcript,omitempty"`
	Extracted  *ai.ExtractedFields `json:"extracted,omitempty"`

	CrimeType               string `json:"crime_type,omitempty"`
	SharedWithCrimestoppers bool   `json:"shared_with_crimestoppers"`
}

// badInputError marks a caller mistake, as opposed to an upstream
// service failure. The two map to different status codes.
type badInputError struct {
	msg string
}

func (e badInputError) Error() string { return e.msg }

func badInput(format string, args ...interface{}) error {
	return badInputError{msg: fmt.Sprintf(format, args...)}
}

// reportView is a report plus its transient display coordinate.
type reportView struct {
	models.Report
	Coordinates *[2]float64 `json:"coordinates,omitempty"`
}

// CreateReport handles the primary submission form, both text and audio
// modes. Steps run strictly in order: validate, geocode, insert, then the
// summary is requested asynchronously and back-filled when it arrives.
// POST /api/v1/reports
func (a *API) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var report *models.Report
	var err error
	switch req.InputMode {
	case "", "text":
		report, err = a.buildTextReport(r.Context(), &req)
	case "audio":
		report, err = a.buildAudioReport(r.Context(), &req)
	default:
		http.Error(w, fmt.Sprintf("unknown input_mode %q", req.InputMode), http.StatusBadRequest)
		return
	}
	if err != nil {
		// Caller mistakes are 400s; a failing extraction service is not
		// the caller's fault.
		var bad badInputError
		if errors.As(err, &bad) || errors.Is(err, ai.ErrEmptyTranscript) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		} else {
			http.Error(w, "Failed to process report: "+err.Error(), http.StatusBadGateway)
		}
		return
	}

	identity := middleware.GetIdentity(r)
	report.UserID = identity.UserID
	report.IsAnonymous = true
	report.Status = "submitted"
	report.SharedWithCrimestoppers = req.SharedWithCrimestoppers

	if err := a.Store.CreateReport(r.Context(), report); err != nil {
		http.Error(w, "Failed to save report: "+err.Error(), http.StatusInternalServerError)
		return
	}

	a.summarizeAsync(*report)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Report submitted successfully",
		"report":  report,
	})
}

// buildTextReport validates and assembles a text-mode submission.
func (a *API) buildTextReport(ctx context.Context, req *CreateReportRequest) (*models.Report, error) {
	if strings.TrimSpace(req.WhatHappened) == "" {
		return nil, badInput("please describe what happened")
	}
	if strings.TrimSpace(req.Postcode) == "" {
		return nil, badInput("postcode is required")
	}

	locationHint := req.AddressDetails
	if req.SelectedPlace != nil {
		locationHint = strings.TrimSpace(locationHint + " | Selected place: " + req.SelectedPlace.DisplayName)
	}

	crimeType := req.CrimeType
	if crimeType == "" {
		crimeType = "theft"
	}

	report := &models.Report{
		RawText:         strings.TrimSpace(req.WhatHappened),
		Postcode:        strings.TrimSpace(req.Postcode),
		LocationHint:    locationHint,
		TimeDescription: req.WhenHappened,
		TimeKnown:       strings.TrimSpace(req.WhenHappened) != "",
		PeopleDescription: joinNonEmpty(" | ",
			req.PeopleDetails, req.PeopleAppearance, req.ContactDetails),
		PeopleNames:       req.PeopleDetails,
		PeopleAppearance:  req.PeopleAppearance,
		PeopleContactInfo: req.ContactDetails,
		HasVehicle:        req.HasVehicle,
		HasWeapon:         req.HasWeapon,
		CrimeType:         crimeType,
	}

	// A postcode that will not geocode still makes a valid report; it
	// just never appears on the map.
	if coord := a.Geocoder.PostcodeToCoords(ctx, report.Postcode); coord != nil {
		report.Location = &models.GeoPoint{Lat: coord.Lat, Lng: coord.Lng}
	}
	return report, nil
}

// buildAudioReport assembles an audio-mode submission from extracted
// fields, extracting them from the transcript first when the client has
// not already done so.
func (a *API) buildAudioReport(ctx context.Context, req *CreateReportRequest) (*models.Report, error) {
	extracted := req.Extracted
	if extracted == nil {
		if strings.TrimSpace(req.Transcript) == "" {
			return nil, badInput("audio submissions need a transcript or extracted fields")
		}
		var err error
		extracted, err = a.AI.ExtractFields(ctx, req.Transcript)
		if err != nil {
			return nil, err
		}
	}

	if deref(extracted.Location) == "" && deref(extracted.Description) == "" {
		return nil, badInput("could not extract location information from the audio; please re-record with more location details")
	}

	rawText := deref(extracted.Description)
	if rawText == "" {
		rawText = "Audio report - see location hint for details"
	}

	// Prefer the extractor's postcode; fall back to one embedded in the
	// location text.
	postcode := deref(extracted.Postcode)
	if postcode == "" {
		postcode = postcodePattern.FindString(deref(extracted.Location))
	}

	crimeType := req.CrimeType
	if crimeType == "" {
		crimeType = "theft"
	}

	report := &models.Report{
		RawText:         rawText,
		Postcode:        postcode,
		LocationHint:    deref(extracted.Location),
		TimeDescription: deref(extracted.TimeOfIncident),
		TimeKnown:       deref(extracted.TimeOfIncident) != "",
		PeopleDescription: joinNonEmpty(" | ",
			deref(extracted.PeopleInvolved), deref(extracted.Appearance), deref(extracted.ContactInfo)),
		PeopleNames:       deref(extracted.PeopleInvolved),
		PeopleAppearance:  deref(extracted.Appearance),
		PeopleContactInfo: deref(extracted.ContactInfo),
		HasVehicle:        extracted.HasVehicle,
		HasWeapon:         extracted.HasWeapon,
		CrimeType:         crimeType,
	}

	if raw, err := json.Marshal(extracted); err == nil {
		report.Extracted = raw
	}

	if coord := a.Geocoder.PostcodeToCoords(ctx, postcode); coord != nil {
		report.Location = &models.GeoPoint{Lat: coord.Lat, Lng: coord.Lng}
	}
	return report, nil
}

// GetReports returns all reports newest first, photos attached and
// transient coordinates resolved where possible.
// GET /api/v1/reports
func (a *API) GetReports(w http.ResponseWriter, r *http.Request) {
	reports, err := a.Store.ListReportsWithPhotos(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch reports", http.StatusInternalServerError)
		return
	}

	views := make([]reportView, 0, len(reports))
	for _, report := range reports {
		views = append(views, reportView{Report: report, Coordinates: a.resolveCoordinates(r.Context(), &report)})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reports": views,
		"count":   len(views),
	})
}

// GetReport returns one report with photos.
// GET /api/v1/reports/{id}
func (a *API) GetReport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		http.Error(w, "invalid report id", http.StatusBadRequest)
		return
	}

	report, err := a.Store.GetReport(r.Context(), id)
	if err != nil {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}
	photos, err := a.Store.PhotosByReport(r.Context(), id)
	if err == nil {
		report.Photos = photos
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"report": reportView{Report: *report, Coordinates: a.resolveCoordinates(r.Context(), report)},
	})
}

// NearbyReports returns plottable reports inside a map bounds box.
// Reports without a resolvable coordinate are skipped, never an error.
// GET /api/v1/reports/nearby?north=&south=&east=&west=
func (a *API) NearbyReports(w http.ResponseWriter, r *http.Request) {
	bound, err := parseBounds(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reports, err := a.Store.ListReportsWithPhotos(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch reports", http.StatusInternalServerError)
		return
	}

	views := make([]reportView, 0)
	for _, report := range reports {
		coords := a.resolveCoordinates(r.Context(), &report)
		if coords == nil {
			continue
		}
		if !bound.Contains(orb.Point{coords[1], coords[0]}) {
			continue
		}
		views = append(views, reportView{Report: report, Coordinates: coords})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reports": views,
		"count":   len(views),
	})
}

// resolveCoordinates produces the transient display coordinate: the
// stored geometry point when present, else a fresh (cached) geocode of
// the postcode. Nil means not plottable.
func (a *API) resolveCoordinates(ctx context.Context, report *models.Report) *[2]float64 {
	if report.Location != nil {
		return &[2]float64{report.Location.Lat, report.Location.Lng}
	}
	if coord := a.Geocoder.PostcodeToCoords(ctx, report.Postcode); coord != nil {
		return &[2]float64{coord.Lat, coord.Lng}
	}
	return nil
}

// summarizeAsync requests a one-line summary and back-fills it once it
// arrives. Failures degrade silently; the report stands without a
// summary.
func (a *API) summarizeAsync(report models.Report) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()

		summary, err := a.AI.SummarizeReport(ctx, &report)
		if err != nil {
			log.Printf("summarize report %s: %v", report.ID, err)
			return
		}
		if err := a.Store.UpdateSummary(ctx, report.ID, summary); err != nil {
			log.Printf("store summary for report %s: %v", report.ID, err)
		}
	}()
}

func parseBounds(r *http.Request) (orb.Bound, error) {
	var vals [4]float64
	for i, name := range []string{"north", "south", "east", "west"} {
		raw := r.URL.Query().Get(name)
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("invalid or missing %s bound", name)
		}
		vals[i] = v
	}
	north, south, east, west := vals[0], vals[1], vals[2], vals[3]
	return orb.Bound{
		Min: orb.Point{west, south},
		Max: orb.Point{east, north},
	}, nil
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
