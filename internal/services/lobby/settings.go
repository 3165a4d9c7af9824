package lobby

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/mcoot/wordbomb/internal/model"
)

// SettingsPatch is a partial settings update as sent by a client. Only the
// keys roundTime, startingLives and maxPlayers are read; values may be JSON
// numbers or numeric strings.
type SettingsPatch map[string]any

// Recognized settings keys
const (
	SettingRoundTime     = "roundTime"
	SettingStartingLives = "startingLives"
	SettingMaxPlayers    = "maxPlayers"
)

// Apply merges the patch into current. Any value that is missing, not an
// integer, or out of range leaves the current value in place.
func (p SettingsPatch) Apply(current model.Settings) model.Settings {
	next := current
	next.RoundTimeSeconds = p.pick(SettingRoundTime, current.RoundTimeSeconds, 1, model.MaxRoundTimeSeconds)
	next.StartingLives = p.pick(SettingStartingLives, current.StartingLives, 1, model.MaxStartingLives)
	next.MaxPlayers = p.pick(SettingMaxPlayers, current.MaxPlayers, model.MinMaxPlayers, model.MaxMaxPlayers)
	return next
}

func (p SettingsPatch) pick(key string, prior, lo, hi int) int {
	raw, ok := p[key]
	if !ok {
		return prior
	}
	v, ok := coerceInt(raw)
	if !ok || v < lo || v > hi {
		return prior
	}
	return v
}

// coerceInt converts a loosely typed value to an int, truncating fractions
func coerceInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return floatToInt(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), true
		}
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(math.Trunc(f)), true
}
