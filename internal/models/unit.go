package models

import (
	"fmt"
	"strings"
)

// Unit is the closed set of measurement labels an item can carry.
type Unit string

const (
	UnitDays    Unit = "days"
	UnitHours   Unit = "hours"
	UnitLiters  Unit = "liters"
	UnitPages   Unit = "pages"
	UnitNumeric Unit = "numeric"
	UnitKm      Unit = "km"
	UnitUnits   Unit = "units"
)

var allUnits = []Unit{UnitDays, UnitHours, UnitLiters, UnitPages, UnitNumeric, UnitKm, UnitUnits}

// unitAliases maps legacy and abbreviated labels onto the canonical set
var unitAliases = map[string]Unit{
	"day":     UnitDays,
	"d":       UnitDays,
	"hour":    UnitHours,
	"h":       UnitHours,
	"liter":   UnitLiters,
	"l":       UnitLiters,
	"page":    UnitPages,
	"pag":     UnitPages,
	"number":  UnitNumeric,
	"unidade": UnitUnits,
	"unit":    UnitUnits,
	"un":      UnitUnits,
}

// Units returns every valid unit in display order.
func Units() []Unit {
	out := make([]Unit, len(allUnits))
	copy(out, allUnits)
	return out
}

// ParseUnit normalizes s into a Unit. An empty string yields fallback.
func ParseUnit(s string, fallback Unit) (Unit, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return fallback, nil
	}
	for _, u := range allUnits {
		if string(u) == s {
			return u, nil
		}
	}
	if u, ok := unitAliases[s]; ok {
		return u, nil
	}
	return "", fmt.Errorf("invalid unit %q (expected one of %v)", s, allUnits)
}

// Valid reports whether u belongs to the closed unit set.
func (u Unit) Valid() bool {
	for _, known := range allUnits {
		if u == known {
			return true
		}
	}
	return false
}

// Label returns the short suffix used when printing quantities.
func (u Unit) Label() string {
	switch u {
	case UnitDays:
		return "d"
	case UnitHours:
		return "h"
	case UnitLiters:
		return "L"
	case UnitPages:
		return "pg"
	case UnitKm:
		return "km"
	case UnitUnits:
		return "un"
	default:
		return ""
	}
}
