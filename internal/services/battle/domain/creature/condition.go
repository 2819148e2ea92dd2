package creature

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCondition indicates a condition key outside the enumeration.
var ErrUnknownCondition = errors.New("unknown status condition")

// Condition is a persistent status affliction.
type Condition int

const (
	ConditionNone Condition = iota
	Paralysis
	Sleep
	Poison
	Burn
	Freeze
	BadlyPoisoned
)

var conditionKeys = map[Condition]string{
	Paralysis:     "paralysis",
	Sleep:         "sleep",
	Poison:        "poison",
	Burn:          "burn",
	Freeze:        "freeze",
	BadlyPoisoned: "badly-poisoned",
}

func (c Condition) String() string {
	if key, ok := conditionKeys[c]; ok {
		return key
	}
	return "none"
}

// Valid reports whether c is one of the six conditions.
func (c Condition) Valid() bool {
	_, ok := conditionKeys[c]
	return ok
}

// ParseCondition maps a key such as "badly-poisoned" to a Condition.
func ParseCondition(raw string) (Condition, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "_", "-")
	switch key {
	case "paralysis", "par":
		return Paralysis, nil
	case "sleep", "slp":
		return Sleep, nil
	case "poison", "psn":
		return Poison, nil
	case "burn", "brn":
		return Burn, nil
	case "freeze", "frz":
		return Freeze, nil
	case "badly-poisoned", "toxic", "tox":
		return BadlyPoisoned, nil
	default:
		return ConditionNone, fmt.Errorf("%w: %q", ErrUnknownCondition, raw)
	}
}

// StatusState is the active condition and its counters.
type StatusState struct {
	Condition Condition
	// TurnsRemaining counts down sleep, set to 1-3 on application.
	TurnsRemaining int
	// PoisonCounter scales badly-poisoned damage, starting at 1.
	PoisonCounter int
}
