// Package query reads and writes the persona as URL query parameters, the
// form a host keeps it in between sessions: phase plus energy and plasticity
// at two decimals.
package query

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/talgya/fieldwave/internal/field"
)

// ErrEmptyQuery is returned when a query names none of the persona keys.
var ErrEmptyQuery = errors.New("query has no persona keys")

// Parameter names.
const (
	KeyPhase      = "phase"
	KeyEnergy     = "energy"
	KeyPlasticity = "plasticity"
)

// Encode returns p as a query string with numbers at two decimals.
func Encode(p field.Persona) string {
	v := url.Values{}
	v.Set(KeyPhase, string(p.Phase))
	v.Set(KeyEnergy, strconv.FormatFloat(p.Energy, 'f', 2, 64))
	v.Set(KeyPlasticity, strconv.FormatFloat(p.Plasticity, 'f', 2, 64))
	return v.Encode()
}

// Decode reads a persona patch from a query string, with or without a leading
// '?'. Numbers are clamped to [0, 1]; empty or unparsable numbers and an
// empty phase are skipped. A query with no usable keys returns ErrEmptyQuery.
func Decode(raw string) (field.PersonaPatch, error) {
	var patch field.PersonaPatch

	v, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return patch, fmt.Errorf("parse query: %w", err)
	}

	if ph := v.Get(KeyPhase); ph != "" {
		patch.Phase = field.Ptr(field.Phase(ph))
	}
	if e, ok := unitFloat(v.Get(KeyEnergy)); ok {
		patch.Energy = &e
	}
	if p, ok := unitFloat(v.Get(KeyPlasticity)); ok {
		patch.Plasticity = &p
	}

	if patch.Phase == nil && patch.Energy == nil && patch.Plasticity == nil {
		return patch, ErrEmptyQuery
	}
	return patch, nil
}

func unitFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return field.Clamp01(f), true
}
