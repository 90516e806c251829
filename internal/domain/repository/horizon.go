package repository

// Supported forecast horizons in days.
var Horizons = []int{1, 7, 30}

// IsValidHorizon returns true if h is a supported horizon.
func IsValidHorizon(h int) bool {
	for _, v := range Horizons {
		if v == h {
			return true
		}
	}
	return false
}

// DefaultHorizon returns the default horizon in days.
func DefaultHorizon() int { return 1 }

// NormalizeHorizon clamps raw input to a valid horizon (or default).
func NormalizeHorizon(h int) int {
	if IsValidHorizon(h) {
		return h
	}
	return DefaultHorizon()
}
