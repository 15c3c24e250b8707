// CFTracker - Codeforces Student Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cftracker

package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cftracker/internal/validation"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// sanitizeLogValue escapes control characters so user input cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&result, "\\x%02x", r)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// getIntParam reads a positive integer query parameter within [1, maxVal].
// A missing parameter returns def.
func getIntParam(r *http.Request, name string, def, maxVal int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	if v < 1 || v > maxVal {
		return 0, fmt.Errorf("%s must be between 1 and %d", name, maxVal)
	}
	return v, nil
}

// decodeBody decodes a JSON body into v and validates it. On failure it
// writes the 400 response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		msg := msgInvalidBody
		if err == io.EOF {
			msg = "Request body is required"
		}
		NewResponseWriter(w, r).BadRequest(msg)
		return false
	}
	if verr := validation.ValidateStruct(v); verr != nil {
		respondValidation(w, r, verr)
		return false
	}
	return true
}

func studentID(r *http.Request) string {
	return chi.URLParam(r, "id")
}
