// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package validation

import (
	"strings"
	"testing"

	"github.com/tomtom215/cftracker/internal/models"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil || v1 != v2 {
		t.Error("GetValidator() should return the same non-nil instance")
	}
}

func strPtr(s string) *string { return &s }

func TestValidateStruct_StudentInput(t *testing.T) {
	tests := []struct {
		name    string
		input   models.StudentInput
		wantErr bool
		field   string
	}{
		{name: "handle only", input: models.StudentInput{Handle: "tourist"}},
		{name: "full", input: models.StudentInput{Handle: "Petr", Name: strPtr("Petr M"), Email: strPtr("petr@example.com")}},
		{name: "missing handle", input: models.StudentInput{}, wantErr: true, field: "cf_handle"},
		{name: "bad email", input: models.StudentInput{Handle: "tourist", Email: strPtr("nope")}, wantErr: true, field: "email"},
		{name: "long name", input: models.StudentInput{Handle: "tourist", Name: strPtr(strings.Repeat("a", 200))}, wantErr: true, field: "name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := ValidateStruct(&tt.input)
			if !tt.wantErr {
				if verr != nil {
					t.Fatalf("unexpected error: %v", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("expected validation error")
			}
			if got := verr.Errors()[0].Field(); got != tt.field {
				t.Errorf("field = %q, want %q", got, tt.field)
			}
		})
	}
}

type customTags struct {
	Handle string `json:"handle" validate:"cfhandle"`
	Cron   string `json:"cron_time" validate:"cron"`
	Role   string `json:"role" validate:"role"`
}

func TestValidateStruct_CustomTags(t *testing.T) {
	valid := customTags{Handle: "jiangly", Cron: "*/30 * * * *", Role: models.RoleUser}
	if verr := ValidateStruct(&valid); verr != nil {
		t.Fatalf("unexpected error: %v", verr)
	}

	invalid := customTags{Handle: "a b", Cron: "every day", Role: "root"}
	verr := ValidateStruct(&invalid)
	if verr == nil {
		t.Fatal("expected validation errors")
	}
	if len(verr.Errors()) != 3 {
		t.Fatalf("errors = %d, want 3: %v", len(verr.Errors()), verr)
	}

	want := map[string]string{
		"handle":    "handle must be a valid Codeforces handle",
		"cron_time": "cron_time must be a valid cron expression",
		"role":      "role must be admin or user",
	}
	for _, e := range verr.Errors() {
		if want[e.Field()] != e.Error() {
			t.Errorf("%s: message = %q", e.Field(), e.Error())
		}
	}
}

func TestToAPIError(t *testing.T) {
	single := ValidateStruct(&models.StudentInput{})
	apiErr := single.ToAPIError()
	if apiErr.Code != ErrorCode {
		t.Errorf("Code = %q", apiErr.Code)
	}
	if apiErr.Message != "cf_handle is required" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "cf_handle" {
		t.Errorf("Details = %v", apiErr.Details)
	}

	multi := ValidateStruct(&customTags{Handle: "!", Cron: "x", Role: "y"}).ToAPIError()
	fields, ok := multi.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Errorf("Details = %v", multi.Details)
	}

	empty := (&RequestValidationError{}).ToAPIError()
	if empty.Message != "Validation failed" {
		t.Errorf("empty Message = %q", empty.Message)
	}
}
