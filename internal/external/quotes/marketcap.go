package quotes

// DefaultMarketCaps is used when a provider omits market cap (USD)
func DefaultMarketCaps() map[string]float64 {
	return map[string]float64{
		"PG":   392_000_000_000, // Procter & Gamble
		"UNH":  255_000_000_000, // UnitedHealth
		"BA":   138_000_000_000, // Boeing
		"MRK":  320_000_000_000, // Merck
		"SPOT": 52_000_000_000,  // Spotify
	}
}
