package fieldmap

import (
	"strings"
	"testing"
)

const (
	postcodeLabel = "Town or city or Postcode\n (VITAL INFORMATION)"
	whenLabel     = "Do you know when it happened?\n (Required Info)"
	whatLabel     = "Please don't give information about the people involved as you will be asked details about this in the next section.\n (Required Info)"
	vehicleLabel  = "Do any of the people involved in the crime have access to a vehicle/vehicles?"
	weaponLabel   = "Do any of the people involved in the crime have access to a weapon/weapons?"
)

func minimalFields() map[string]string {
	return map[string]string{
		postcodeLabel: "S10 5GG",
		whenLabel:     "Yesterday",
		whatLabel:     "Saw a theft",
	}
}

func TestMapFields_AllRequiredPresent(t *testing.T) {
	rec, res := MapFields(minimalFields())

	if !res.Valid {
		t.Fatalf("expected valid result, got errors: %v", res.Errors)
	}
	if rec.Postcode != "S10 5GG" {
		t.Errorf("postcode = %q, want %q", rec.Postcode, "S10 5GG")
	}
	if rec.TimeDescription != "Yesterday" {
		t.Errorf("time_description = %q, want %q", rec.TimeDescription, "Yesterday")
	}
	if rec.RawText != "Saw a theft" {
		t.Errorf("raw_text = %q, want %q", rec.RawText, "Saw a theft")
	}
	if len(res.MappedFields) != 3 {
		t.Errorf("mapped fields = %d, want 3", len(res.MappedFields))
	}
	if len(res.UnmappedFields) != 0 {
		t.Errorf("unexpected unmapped fields: %v", res.UnmappedFields)
	}
}

func TestMapFields_MissingRequired(t *testing.T) {
	tests := []struct {
		name string
		omit string
	}{
		{"missing postcode", postcodeLabel},
		{"missing time", whenLabel},
		{"missing description", whatLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := minimalFields()
			delete(fields, tt.omit)

			_, res := MapFields(fields)
			if res.Valid {
				t.Fatal("expected validation failure")
			}

			found := false
			for _, e := range res.Errors {
				if strings.Contains(e, tt.omit) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not name field %q", res.Errors, tt.omit)
			}
		})
	}
}

func TestMapFields_EmptyRequired(t *testing.T) {
	fields := minimalFields()
	fields[postcodeLabel] = "   "

	_, res := MapFields(fields)
	if res.Valid {
		t.Fatal("expected validation failure for whitespace-only required field")
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "is empty") {
		t.Errorf("unexpected errors: %v", res.Errors)
	}
}

func TestMapFields_UnknownLabelIsWarningOnly(t *testing.T) {
	fields := minimalFields()
	fields["Favourite colour?"] = "blue"

	_, res := MapFields(fields)
	if !res.Valid {
		t.Fatalf("unknown label must not fail validation, got errors: %v", res.Errors)
	}
	if len(res.UnmappedFields) != 1 || res.UnmappedFields[0] != "Favourite colour?" {
		t.Errorf("unmapped fields = %v, want the unknown label", res.UnmappedFields)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("warnings = %v, want exactly one", res.Warnings)
	}
}

func TestMapFields_BooleanCoercion(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"True", true},
		{" true ", true},
		{"false", false},
		{"yes", false},
		{"1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run("value "+tt.value, func(t *testing.T) {
			fields := minimalFields()
			fields[vehicleLabel] = tt.value
			fields[weaponLabel] = tt.value

			rec, res := MapFields(fields)
			if !res.Valid {
				t.Fatalf("unexpected errors: %v", res.Errors)
			}
			if rec.HasVehicle != tt.want || rec.HasWeapon != tt.want {
				t.Errorf("coerced %q to (vehicle=%v, weapon=%v), want %v",
					tt.value, rec.HasVehicle, rec.HasWeapon, tt.want)
			}
		})
	}
}

func TestMapFields_TrimsStrings(t *testing.T) {
	fields := minimalFields()
	fields[postcodeLabel] = "  S10 5GG  "

	rec, res := MapFields(fields)
	if !res.Valid {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if rec.Postcode != "S10 5GG" {
		t.Errorf("postcode = %q, want trimmed value", rec.Postcode)
	}
}
