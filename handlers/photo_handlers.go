package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/eccleston-labs/lfg-hackathon/store"
)

const (
	maxPhotosPerReport = 5
	maxPhotoBytes      = 5 << 20 // 5MB per file
)

// UploadPhotos attaches photos to an existing report. Bytes go to object
// storage first, then a row per photo; a row failing after its upload is
// reported as a warning alongside the successes.
// POST /api/v1/reports/{id}/photos
func (a *API) UploadPhotos(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	reportID, err := uuid.Parse(vars["id"])
	if err != nil {
		http.Error(w, "invalid report id", http.StatusBadRequest)
		return
	}

	// Photos are only ever created after their report exists.
	if _, err := a.Store.GetReport(r.Context(), reportID); err != nil {
		http.Error(w, "Report not found", http.StatusNotFound)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		http.Error(w, "no photos supplied", http.StatusBadRequest)
		return
	}
	if len(files) > maxPhotosPerReport {
		http.Error(w, "maximum 5 photos allowed per report", http.StatusBadRequest)
		return
	}

	var uploads []store.PhotoUpload
	for _, header := range files {
		contentType := header.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			http.Error(w, header.Filename+" is not an image file", http.StatusBadRequest)
			return
		}
		if header.Size > maxPhotoBytes {
			http.Error(w, header.Filename+" is too large, maximum size is 5MB", http.StatusBadRequest)
			return
		}

		f, err := header.Open()
		if err != nil {
			http.Error(w, "failed to read "+header.Filename, http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes+1))
		f.Close()
		if err != nil || int64(len(data)) > maxPhotoBytes {
			http.Error(w, "failed to read "+header.Filename, http.StatusBadRequest)
			return
		}

		uploads = append(uploads, store.PhotoUpload{
			Filename:    header.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}

	photos, warnings, err := a.Store.AttachPhotos(r.Context(), reportID, uploads)
	if err != nil {
		http.Error(w, "Failed to upload photos: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{
		"photos": photos,
		"count":  len(photos),
	}
	if len(warnings) > 0 {
		resp["warning"] = "report saved but some photos failed to attach"
		resp["details"] = warnings
	}
	writeJSON(w, http.StatusCreated, resp)
}
