// Package strategy derives discrete position signals from the relative
// ordering of two simple moving averages.
package strategy

// Signal is the desired position at a point in time.
type Signal int8

const (
	// Flat means out of the market. It is the conservative default for
	// indices where the SMAs are not yet defined.
	Flat Signal = iota
	// Long means fully invested.
	Long
)

func (s Signal) String() string {
	if s == Long {
		return "long"
	}
	return "flat"
}

// CrossType identifies the direction of an SMA crossover.
type CrossType int8

const (
	// GoldenCross fires when the short SMA crosses from at-or-below to
	// above the long SMA.
	GoldenCross CrossType = iota + 1
	// DeathCross fires when the short SMA crosses from at-or-above to
	// below the long SMA.
	DeathCross
)

func (c CrossType) String() string {
	switch c {
	case GoldenCross:
		return "golden cross"
	case DeathCross:
		return "death cross"
	default:
		return "unknown"
	}
}

// Cross is a crossover event at a specific index of the price series.
type Cross struct {
	Index int       `json:"index"`
	Type  CrossType `json:"type"`
}
