package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/eccleston-labs/lfg-hackathon/middleware"
	"github.com/eccleston-labs/lfg-hackathon/models"
	"github.com/eccleston-labs/lfg-hackathon/pkg/fieldmap"
)

// CrimestoppersWebhook ingests a third-party form submission.
// POST /webhook/crimestoppers
func (a *API) CrimestoppersWebhook(w http.ResponseWriter, r *http.Request) {
	var payload models.CrimestoppersPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, models.WebhookResponse{
			Success: false,
			Error:   "Invalid payload: malformed JSON",
		})
		return
	}

	if payload.FormID == "" || payload.FormFields == nil {
		writeJSON(w, http.StatusBadRequest, models.WebhookResponse{
			Success: false,
			Error:   "Invalid payload: missing formID or formFields",
		})
		return
	}

	log.Printf("webhook: received crimestoppers payload formID=%s title=%q fields=%d",
		payload.FormID, payload.Title, len(payload.FormFields))

	rec, result := fieldmap.MapFields(payload.FormFields)
	if !result.Valid {
		writeJSON(w, http.StatusBadRequest, models.WebhookResponse{
			Success: false,
			Error:   "Validation failed",
			Details: result.Errors,
		})
		return
	}

	crimeType := payload.Title
	if crimeType == "" {
		crimeType = "Unknown"
	}

	identity := middleware.GetIdentity(r)
	report := models.Report{
		RawText:                 rec.RawText,
		Postcode:                rec.Postcode,
		LocationHint:            rec.LocationHint,
		TimeDescription:         rec.TimeDescription,
		TimeKnown:               rec.TimeDescription != "" && !strings.EqualFold(rec.TimeDescription, "false"),
		PeopleNames:             rec.PeopleNames,
		PeopleAppearance:        rec.PeopleAppearance,
		PeopleContactInfo:       rec.PeopleContactInfo,
		HasVehicle:              rec.HasVehicle,
		HasWeapon:               rec.HasWeapon,
		CrimeType:               crimeType,
		IsAnonymous:             true,
		SharedWithCrimestoppers: true,
		Status:                  "submitted",
		UserID:                  identity.UserID,
	}

	// Resolvability is not required; an unplottable report is still a
	// report.
	if coord := a.Geocoder.PostcodeToCoords(r.Context(), rec.Postcode); coord != nil {
		report.Location = &models.GeoPoint{Lat: coord.Lat, Lng: coord.Lng}
	}

	if err := a.Store.CreateReport(r.Context(), &report); err != nil {
		log.Printf("webhook: create report: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.WebhookResponse{
			Success: false,
			Error:   "Failed to save report",
			Details: []string{err.Error()},
		})
		return
	}

	log.Printf("webhook: created report %s from crimestoppers", report.ID)

	a.summarizeAsync(report)

	writeJSON(w, http.StatusOK, models.WebhookResponse{
		Success:  true,
		ReportID: report.ID.String(),
		Validation: &models.WebhookValidation{
			MappedFields:   len(result.MappedFields),
			UnmappedFields: len(result.UnmappedFields),
			Warnings:       result.Warnings,
		},
	})
}

// CrimestoppersWebhookInfo is the webhook health check, listing the
// supported field mappings.
// GET /webhook/crimestoppers
func (a *API) CrimestoppersWebhookInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "ok",
		"endpoint":        "crimestoppers",
		"supportedFields": fieldmap.Rules,
	})
}
