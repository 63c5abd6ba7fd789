package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyTranscript is returned before any network call when the caller
// supplies no transcript text.
var ErrEmptyTranscript = errors.New("transcript is required")

// ErrBadExtraction marks model output that is not the expected JSON shape.
// Downstream code treats an absent field as "not mentioned", so a parse or
// shape failure must surface hard rather than default silently.
var ErrBadExtraction = errors.New("invalid JSON response from AI parser")

// ExtractedFields is the structured form of a free-text transcript. Nil
// string fields mean the transcript did not mention them.
type ExtractedFields struct {
	Location       *string `json:"location"`
	TimeOfIncident *string `json:"timeOfIncident"`
	Description    *string `json:"description"`
	PeopleInvolved *string `json:"peopleInvolved"`
	Appearance     *string `json:"appearance"`
	ContactInfo    *string `json:"contactInfo"`
	Postcode       *string `json:"postcode"`
	HasVehicle     bool    `json:"hasVehicle"`
	HasWeapon      bool    `json:"hasWeapon"`
}

const extractionSystemPrompt = "You are an expert at extracting structured information from crime reports. Always respond with valid JSON only, no additional text."

const extractionPromptTemplate = `Parse this crime report transcript and extract structured information:

%q

Extract the following information if mentioned in the transcript:
- LOCATION: Where did this happen? (address, postcode, area, landmarks, street names)
- TIME: When did this happen? (date, time, timeframe like "yesterday", "this morning")
- DESCRIPTION: What happened? (main incident description, what crime occurred)
- PEOPLE: Who was involved? (names, ages, relationships, "the suspect", "a man", etc.)
- APPEARANCE: Physical descriptions of people (height, clothing, hair, age, gender)
- CONTACT: Phone numbers, social media accounts, email addresses, or other contact details mentioned
- VEHICLE: Any mention of cars, bikes, motorcycles, etc. (respond with true/false)
- WEAPON: Any mention of weapons, knives, guns, etc. (respond with true/false)
- POSTCODE: Calculate the postcode based on the location information provided

Important rules:
- Only extract information that is explicitly mentioned in the transcript
- If information isn't clear or mentioned, mark that field as null
- For VEHICLE and WEAPON, respond with true only if explicitly mentioned
- Keep original wording where possible

Respond with valid JSON in exactly this format:
{
  "location": "extracted location or null",
  "timeOfIncident": "extracted time or null",
  "description": "extracted description or null",
  "peopleInvolved": "extracted people details or null",
  "appearance": "extracted appearance details or null",
  "contactInfo": "extracted contact info or null",
  "postcode": "calculated postcode or null",
  "hasVehicle": false,
  "hasWeapon": false
}`

// ExtractFields asks the model to structure a raw transcript. The response
// text must parse strictly as the extraction schema; anything else returns
// ErrBadExtraction.
func (c *Client) ExtractFields(ctx context.Context, transcript string) (*ExtractedFields, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, ErrEmptyTranscript
	}

	prompt := fmt.Sprintf(extractionPromptTemplate, transcript)
	text, err := c.chatCompletion(ctx, extractionSystemPrompt, prompt, 0.1, 1000)
	if err != nil {
		return nil, err
	}

	fields, err := parseExtraction(text)
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// parseExtraction decodes model output into ExtractedFields, rejecting
// anything that is not an object with the expected field types. The model
// is a trust boundary: a shape mismatch is treated the same as a parse
// failure.
func parseExtraction(text string) (*ExtractedFields, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadExtraction, err)
	}

	stringFields := []string{"location", "timeOfIncident", "description", "peopleInvolved", "appearance", "contactInfo", "postcode"}
	for _, name := range stringFields {
		v, ok := raw[name]
		if !ok {
			continue
		}
		var s *string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, fmt.Errorf("%w: field %q is not a string or null", ErrBadExtraction, name)
		}
	}
	for _, name := range []string{"hasVehicle", "hasWeapon"} {
		v, ok := raw[name]
		if !ok {
			continue
		}
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			return nil, fmt.Errorf("%w: field %q is not a boolean", ErrBadExtraction, name)
		}
	}

	var fields ExtractedFields
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadExtraction, err)
	}

	// Models occasionally emit the literal string "null" instead of JSON null.
	scrub := func(p **string) {
		if *p != nil && strings.EqualFold(strings.TrimSpace(**p), "null") {
			*p = nil
		}
	}
	scrub(&fields.Location)
	scrub(&fields.TimeOfIncident)
	scrub(&fields.Description)
	scrub(&fields.PeopleInvolved)
	scrub(&fields.Appearance)
	scrub(&fields.ContactInfo)
	scrub(&fields.Postcode)

	return &fields, nil
}
