package game

import "time"

// DefaultConstraints is the catalog turn constraints are drawn from: vowels,
// common consonant blends, digraphs and Ñ
var DefaultConstraints = []string{
	"A", "E", "I", "O", "U",
	"AR", "ER", "IR", "OR", "UR",
	"BL", "BR", "CL", "CR", "FL", "FR", "GL", "GR", "PL", "PR", "TR", "DR",
	"ION", "IA", "IO", "UE", "UO",
	"MB", "MP", "NV", "NF",
	"CH", "LL", "RR",
	"Ñ",
}

// Config holds the rules that are fixed for the whole process
type Config struct {
	// Constraints is the catalog each turn's constraint is drawn from
	Constraints []string

	// TimeoutGrace is added to the round time before a turn times out, to
	// absorb network and processing delay
	TimeoutGrace time.Duration

	// Cooldown is how long a finished game stays ENDED before the room
	// returns to LOBBY
	Cooldown time.Duration

	// RequireDictionary refuses to start games while the dictionary is not
	// loaded, since every submission would be rejected
	RequireDictionary bool

	// MaxTypingLength caps relayed partial input
	MaxTypingLength int
}

// DefaultConfig returns the standard game rules
func DefaultConfig() Config {
	return Config{
		Constraints:       DefaultConstraints,
		TimeoutGrace:      time.Second,
		Cooldown:          5 * time.Second,
		RequireDictionary: true,
		MaxTypingLength:   40,
	}
}

// TurnTimeout returns how long a turn lasts with the given round time
func (c Config) TurnTimeout(roundTimeSeconds int) time.Duration {
	return time.Duration(roundTimeSeconds)*time.Second + c.TimeoutGrace
}
