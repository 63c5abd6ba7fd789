package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eccleston-labs/lfg-hackathon/models"
)

// chatServer answers every chat-completions call with content.
func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestExtractFields_ParsesValidResponse(t *testing.T) {
	srv := chatServer(t, `{
		"location": "High Street, Sheffield",
		"timeOfIncident": "yesterday afternoon",
		"description": "a bike was stolen",
		"peopleInvolved": null,
		"appearance": null,
		"contactInfo": null,
		"postcode": "S10 5GG",
		"hasVehicle": true,
		"hasWeapon": false
	}`)
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	fields, err := c.ExtractFields(context.Background(), "someone stole my bike on High Street yesterday")
	if err != nil {
		t.Fatalf("ExtractFields: %v", err)
	}

	if fields.Location == nil || *fields.Location != "High Street, Sheffield" {
		t.Errorf("location = %v, want High Street, Sheffield", fields.Location)
	}
	if fields.PeopleInvolved != nil {
		t.Errorf("peopleInvolved = %v, want nil for unmentioned field", *fields.PeopleInvolved)
	}
	if !fields.HasVehicle || fields.HasWeapon {
		t.Errorf("booleans = (%v, %v), want (true, false)", fields.HasVehicle, fields.HasWeapon)
	}
}

func TestExtractFields_RejectsNonJSON(t *testing.T) {
	srv := chatServer(t, "Sorry, I cannot help with that.")
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.ExtractFields(context.Background(), "some transcript")
	if !errors.Is(err, ErrBadExtraction) {
		t.Fatalf("err = %v, want ErrBadExtraction", err)
	}
}

func TestExtractFields_RejectsShapeMismatch(t *testing.T) {
	// Parseable JSON, wrong field types. Must fail the same way as a
	// parse error.
	srv := chatServer(t, `{"location": 42, "hasVehicle": "yes"}`)
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.ExtractFields(context.Background(), "some transcript")
	if !errors.Is(err, ErrBadExtraction) {
		t.Fatalf("err = %v, want ErrBadExtraction", err)
	}
}

func TestExtractFields_EmptyTranscriptRejectedBeforeNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	_, err := c.ExtractFields(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyTranscript) {
		t.Fatalf("err = %v, want ErrEmptyTranscript", err)
	}
	if called {
		t.Error("empty transcript must not reach the service")
	}
}

func TestExtractFields_ScrubsLiteralNullStrings(t *testing.T) {
	srv := chatServer(t, `{"location": "null", "description": "a theft", "hasVehicle": false, "hasWeapon": false}`)
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	fields, err := c.ExtractFields(context.Background(), "a theft happened")
	if err != nil {
		t.Fatalf("ExtractFields: %v", err)
	}
	if fields.Location != nil {
		t.Errorf("location = %q, want nil for literal \"null\"", *fields.Location)
	}
	if fields.Description == nil || *fields.Description != "a theft" {
		t.Errorf("description = %v, want a theft", fields.Description)
	}
}

func TestSummarizeReport(t *testing.T) {
	srv := chatServer(t, "  Bike theft on High Street, yesterday afternoon.  ")
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	report := &models.Report{
		RawText:         "someone stole my bike",
		CrimeType:       "theft",
		Postcode:        "S10 5GG",
		TimeDescription: "yesterday",
	}

	summary, err := c.SummarizeReport(context.Background(), report)
	if err != nil {
		t.Fatalf("SummarizeReport: %v", err)
	}
	if summary != "Bike theft on High Street, yesterday afternoon." {
		t.Errorf("summary = %q, want trimmed model output", summary)
	}
}

func TestSummarizeReport_EmptyResponseIsError(t *testing.T) {
	srv := chatServer(t, "   ")
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	if _, err := c.SummarizeReport(context.Background(), &models.Report{RawText: "x"}); err == nil {
		t.Fatal("expected error for empty summary")
	}
}

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if lang := r.FormValue("language"); lang != "en" {
			http.Error(w, "unexpected language "+lang, http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, `{"text":"I saw a theft","duration":4.2,"language":"english"}`)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	tr, err := c.Transcribe(context.Background(), "clip.webm", []byte("fake-audio-bytes"))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if tr.Text != "I saw a theft" {
		t.Errorf("text = %q, want transcript", tr.Text)
	}
	if tr.Duration != 4.2 {
		t.Errorf("duration = %v, want 4.2", tr.Duration)
	}
}

func TestTranscribe_NoAudio(t *testing.T) {
	c := NewClient("test-key", WithBaseURL("http://127.0.0.1:1"))
	_, err := c.Transcribe(context.Background(), "clip.webm", nil)
	if !errors.Is(err, ErrNoAudio) {
		t.Fatalf("err = %v, want ErrNoAudio", err)
	}
}
