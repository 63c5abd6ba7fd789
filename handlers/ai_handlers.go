package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/eccleston-labs/lfg-hackathon/pkg/ai"
)

const maxAudioBytes = 25 << 20 // whisper upload limit

// TranscribeAudio converts a recorded clip to text.
// POST /api/v1/transcribe (multipart, field "audio")
func (a *API) TranscribeAudio(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "Audio file is required",
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		http.Error(w, "failed to read audio", http.StatusBadRequest)
		return
	}

	log.Printf("transcribe: %s (%d bytes)", header.Filename, len(data))

	result, err := a.AI.Transcribe(r.Context(), header.Filename, data)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ai.ErrNoAudio) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]interface{}{
			"success": false,
			"error":   "Transcription failed",
			"details": err.Error(),
		})
		return
	}

	segments := result.Segments
	if len(segments) > 5 {
		segments = segments[:5]
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"transcript": result.Text,
		"duration":   result.Duration,
		"language":   result.Language,
		"segments":   segments,
	})
}

// ParseTranscript extracts structured report fields from free text.
// POST /api/v1/parse
func (a *API) ParseTranscript(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Transcript string `json:"transcript"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	fields, err := a.AI.ExtractFields(r.Context(), req.Transcript)
	if err != nil {
		if errors.Is(err, ai.ErrEmptyTranscript) {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"error":   "Transcript is required",
			})
			return
		}
		// Parse and shape failures surface hard: absence of a field
		// means "not mentioned", which a caller cannot distinguish from
		// a silently-defaulted parse error.
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Parsing failed",
			"details": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"extractedFields": fields,
		"rawTranscript":   req.Transcript,
	})
}
