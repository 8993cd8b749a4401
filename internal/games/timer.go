package games

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/madkingbot/officialgames/internal/model"
	"github.com/madkingbot/officialgames/internal/validation"
)

// TimerUnit is the unit spelling a moderator gave for a duration.
// The spellings fall into two families; times are minutes or hours.
type TimerUnit string

const (
	UnitNone TimerUnit = "none"

	UnitM       TimerUnit = "m"
	UnitMin     TimerUnit = "min"
	UnitMins    TimerUnit = "mins"
	UnitMinute  TimerUnit = "minute"
	UnitMinutes TimerUnit = "minutes"

	UnitH     TimerUnit = "h"
	UnitHr    TimerUnit = "hr"
	UnitHrs   TimerUnit = "hrs"
	UnitHour  TimerUnit = "hour"
	UnitHours TimerUnit = "hours"
)

// Longest a game timer may run
const maxTimerHours = 48

var minuteUnits = []TimerUnit{UnitM, UnitMin, UnitMins, UnitMinute, UnitMinutes}

// The empty unit defaults to hours
var hourUnits = []TimerUnit{UnitNone, UnitH, UnitHr, UnitHrs, UnitHour, UnitHours}

// ParseTimerUnit resolves a unit spelling case-insensitively
func ParseTimerUnit(s string) (TimerUnit, bool) {
	for _, u := range append(append([]TimerUnit{}, minuteUnits...), hourUnits...) {
		if strings.EqualFold(s, string(u)) {
			return u, true
		}
	}
	return UnitNone, false
}

func isMinuteUnit(u TimerUnit) bool {
	for _, m := range minuteUnits {
		if u == m {
			return true
		}
	}
	return false
}

func isHourUnit(u TimerUnit) bool {
	for _, h := range hourUnits {
		if u == h {
			return true
		}
	}
	return false
}

// GameTimer is a validated duration plus the numeric value and unit it was
// written with. Immutable; a "new timer" replaces the reference.
type GameTimer struct {
	value time.Duration
	raw   int
	unit  TimerUnit
}

// Value returns the validated duration
func (t GameTimer) Value() time.Duration {
	return t.value
}

// Raw returns the numeric value the timer was constructed from
func (t GameTimer) Raw() int {
	return t.raw
}

// Unit returns the unit spelling the timer was constructed with
func (t GameTimer) Unit() TimerUnit {
	return t.unit
}

// IsZero reports whether this is the zero timer
func (t GameTimer) IsZero() bool {
	return t.value == 0
}

// UnitLabel maps the unit to its display form, "mins" or "hrs". An
// unclassifiable unit is an internal invariant violation: construction
// through the validating factory makes it unreachable.
func (t GameTimer) UnitLabel() (string, error) {
	switch {
	case isMinuteUnit(t.unit):
		return "mins", nil
	case isHourUnit(t.unit):
		return "hrs", nil
	default:
		return "", fmt.Errorf("unit %q: %w", t.unit, model.ErrNoTimerUnit)
	}
}

// DefaultGameTimer returns the fixed 24 hour idle default
func DefaultGameTimer() GameTimer {
	return GameTimer{value: 24 * time.Hour, raw: 24, unit: UnitH}
}

// GameTimerIfValid is the validating factory for GameTimer. A raw value of
// zero always succeeds with the canonical zero timer regardless of unit;
// negative values and durations beyond 48 hours fail.
func GameTimerIfValid(raw int, unit TimerUnit) validation.Value[GameTimer] {
	if raw == 0 {
		return validation.Success(GameTimer{unit: UnitNone})
	}

	if raw < 0 {
		return validation.Failure[GameTimer]("Fool, use positive numeric values for the new value of timer!")
	}

	if (isMinuteUnit(unit) && raw > maxTimerHours*60) || (isHourUnit(unit) && raw > maxTimerHours) {
		return validation.Failure[GameTimer]("No one will want to wait that long for the game to end, " +
			"I won't allow it!")
	}

	if isMinuteUnit(unit) {
		return validation.Success(GameTimer{
			value: time.Duration(raw) * time.Minute,
			raw:   raw,
			unit:  unit,
		})
	}

	return validation.Success(GameTimer{
		value: time.Duration(raw) * time.Hour,
		raw:   raw,
		unit:  unit,
	})
}

// TimerFromAnswer parses a duration argument of the form `<N>[<unit>]`
// where answer is the command argument with spaces already removed. The
// bracketed unit is optional; absence means the default unit (hours).
// Presence requires exactly one open and one close bracket.
func TimerFromAnswer(answer string) validation.Value[GameTimer] {
	if result := squareBracketsValid(answer); result.IsError() {
		return validation.Failure[GameTimer](result.Message())
	}

	rawResult := timerValueFromAnswer(answer)
	if rawResult.IsError() {
		return validation.Failure[GameTimer](rawResult.Message())
	}

	unitResult := timerUnitFromAnswer(answer)
	if unitResult.IsError() {
		return validation.Failure[GameTimer](unitResult.Message())
	}

	return GameTimerIfValid(rawResult.Get(), unitResult.Get())
}

func squareBracketsValid(answer string) validation.Result {
	open := strings.Count(answer, "[")
	closed := strings.Count(answer, "]")
	if (open == 0 && closed == 0) || (open == 1 && closed == 1) {
		return validation.OK()
	}
	return validation.Fail("Use the appropriate number of square brackets you moron!")
}

func timerValueFromAnswer(answer string) validation.Value[int] {
	// Units sit in brackets, so everything before '[' is the value
	val := answer
	if idx := strings.LastIndex(answer, "["); idx >= 0 {
		val = answer[:idx]
	}

	raw, err := strconv.Atoi(val)
	if err != nil {
		return validation.Failure[int]("Incorrect value for new timer! Use numeric values.")
	}
	return validation.Success(raw)
}

func timerUnitFromAnswer(answer string) validation.Value[TimerUnit] {
	// Having no unit is allowed; bracket counts were checked already
	if !strings.ContainsAny(answer, "[]") {
		return validation.Success(UnitNone)
	}

	start := strings.Index(answer, "[") + 1
	end := strings.LastIndex(answer, "]")
	if end < start {
		return validation.Failure[TimerUnit]("Use the appropriate number of square brackets you moron!")
	}

	unit, ok := ParseTimerUnit(answer[start:end])
	if !ok {
		spellings := make([]string, 0, len(minuteUnits)+len(hourUnits))
		for _, u := range append(append([]TimerUnit{}, minuteUnits...), hourUnits...) {
			spellings = append(spellings, string(u))
		}
		return validation.Failure[TimerUnit](fmt.Sprintf(
			"Incorrect units for new timer! Use %s in square brackets.",
			strings.Join(spellings, ", ")))
	}
	return validation.Success(unit)
}
