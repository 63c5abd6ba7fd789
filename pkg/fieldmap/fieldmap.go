// Package fieldmap maps partner form submissions, keyed by question label,
// onto the canonical report schema and validates them.
package fieldmap

import (
	"fmt"
	"strings"
)

// FieldType is the coercion applied to a mapped value.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeBoolean FieldType = "boolean"
)

// Rule ties one partner question label to a report field.
type Rule struct {
	Label    string    `json:"label"`
	Field    string    `json:"dbField"`
	Required bool      `json:"required"`
	Type     FieldType `json:"type"`
}

// Rules is the fixed mapping table for the Crimestoppers form. Labels are
// matched verbatim, embedded newlines included, because that is exactly how
// the partner sends them.
var Rules = []Rule{
	{
		Label:    "Town or city or Postcode\n (VITAL INFORMATION)",
		Field:    "postcode",
		Required: true,
		Type:     TypeString,
	},
	{
		Label:    "Do you have any other address details e.g property number or road name? Can you tell us anything that will help us identify the location?",
		Field:    "location_hint",
		Required: false,
		Type:     TypeString,
	},
	{
		Label:    "Do you know when it happened?\n (Required Info)",
		Field:    "time_description",
		Required: true,
		Type:     TypeString,
	},
	{
		Label:    "Please don't give information about the people involved as you will be asked details about this in the next section.\n (Required Info)",
		Field:    "raw_text",
		Required: true,
		Type:     TypeString,
	},
	{
		Label:    "What do you know about the person  / people? \nCan you tell us their names, age or where they live (if different from the address of the crime)?",
		Field:    "people_names",
		Required: false,
		Type:     TypeString,
	},
	{
		Label:    "What does the person  / people look like?",
		Field:    "people_appearance",
		Required: false,
		Type:     TypeString,
	},
	{
		Label:    "Do you know any contact details for the person / people?",
		Field:    "people_contact_info",
		Required: false,
		Type:     TypeString,
	},
	{
		Label:    "Do any of the people involved in the crime have access to a vehicle/vehicles?",
		Field:    "has_vehicle",
		Required: false,
		Type:     TypeBoolean,
	},
	{
		Label:    "Do any of the people involved in the crime have access to a weapon/weapons?",
		Field:    "has_weapon",
		Required: false,
		Type:     TypeBoolean,
	},
}

// Record is the canonical form of a mapped submission. String values are
// trimmed; booleans hold the coerced value of the literal text "true".
type Record struct {
	Postcode          string
	LocationHint      string
	TimeDescription   string
	RawText           string
	PeopleNames       string
	PeopleAppearance  string
	PeopleContactInfo string
	HasVehicle        bool
	HasWeapon         bool
}

// Result carries the outcome of validating one payload.
type Result struct {
	Valid          bool     `json:"valid"`
	Errors         []string `json:"errors"`
	Warnings       []string `json:"warnings"`
	MappedFields   []string `json:"mappedFields"`
	UnmappedFields []string `json:"unmappedFields"`
}

// MapFields validates fields against Rules and produces the canonical
// record. A required label that is absent, or present but empty after
// trimming, fails validation as a whole. Labels outside the rule table are
// warnings only; they are still reported back in UnmappedFields.
func MapFields(fields map[string]string) (Record, Result) {
	var rec Record
	res := Result{Valid: true}

	for _, rule := range Rules {
		value, ok := fields[rule.Label]
		if !ok {
			if rule.Required {
				res.Errors = append(res.Errors, fmt.Sprintf("Required field '%s' is missing", rule.Label))
				res.Valid = false
			}
			continue
		}

		res.MappedFields = append(res.MappedFields, rule.Label)

		if rule.Type == TypeBoolean {
			assign(&rec, rule.Field, "", strings.EqualFold(strings.TrimSpace(value), "true"))
			continue
		}

		trimmed := strings.TrimSpace(value)
		if rule.Required && trimmed == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("Required field '%s' is empty", rule.Label))
			res.Valid = false
		}
		assign(&rec, rule.Field, trimmed, false)
	}

	for label := range fields {
		if !knownLabel(label) {
			res.UnmappedFields = append(res.UnmappedFields, label)
			res.Warnings = append(res.Warnings, fmt.Sprintf("Unknown field: '%s'", label))
		}
	}

	return rec, res
}

func knownLabel(label string) bool {
	for _, rule := range Rules {
		if rule.Label == label {
			return true
		}
	}
	return false
}

func assign(rec *Record, field, s string, b bool) {
	switch field {
	case "postcode":
		rec.Postcode = s
	case "location_hint":
		rec.LocationHint = s
	case "time_description":
		rec.TimeDescription = s
	case "raw_text":
		rec.RawText = s
	case "people_names":
		rec.PeopleNames = s
	case "people_appearance":
		rec.PeopleAppearance = s
	case "people_contact_info":
		rec.PeopleContactInfo = s
	case "has_vehicle":
		rec.HasVehicle = b
	case "has_weapon":
		rec.HasWeapon = b
	}
}
