package strategyconfig

// Config는 실적 갭 전략의 전체 파라미터
// ⭐ SSOT: S1~S4 모든 임계값
type Config struct {
	Meta           Meta           `yaml:"meta" json:"meta"`
	Normalization  Normalization  `yaml:"normalization" json:"normalization"`
	Scoring        Scoring        `yaml:"scoring" json:"scoring"`
	Classification Classification `yaml:"classification" json:"classification"`
	Selection      Selection      `yaml:"selection" json:"selection"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
	Timezone   string `yaml:"timezone" json:"timezone"`
}

// Normalization S1: 입력 정규화
type Normalization struct {
	DefaultConfidence int    `yaml:"default_confidence" json:"default_confidence"`
	ConfidenceMin     int    `yaml:"confidence_min" json:"confidence_min"`
	ConfidenceMax     int    `yaml:"confidence_max" json:"confidence_max"`
	GapDisplayDigits  int32  `yaml:"gap_display_digits" json:"gap_display_digits"`
	SymbolRule        string `yaml:"symbol_rule" json:"symbol_rule"` // validator tag
}

// Scoring S2: 점수 계산
type Scoring struct {
	ConfidenceMultiplier float64 `yaml:"confidence_multiplier" json:"confidence_multiplier"`
	ScoreMin             float64 `yaml:"score_min" json:"score_min"`
	ScoreMax             float64 `yaml:"score_max" json:"score_max"`

	Gap             GapBands            `yaml:"gap" json:"gap"`
	WindowOverrides map[string]GapBands `yaml:"window_overrides,omitempty" json:"window_overrides,omitempty"`
	Alignment       Alignment           `yaml:"alignment" json:"alignment"`
	Coherence       Coherence           `yaml:"coherence" json:"coherence"`
	Size            SizeAdjust          `yaml:"size" json:"size"`
	Volume          VolumeAdjust        `yaml:"volume" json:"volume"`
	Surprise        SurpriseAdjust      `yaml:"surprise" json:"surprise"`
}

// GapBands |gap%| 구간별 가감점
//
//	|gap| < Floor                  → score 0 (hard floor)
//	Floor <= |gap| < Meaningful    → WeakPenalty
//	Meaningful <= |gap| < Tradable → 0
//	Tradable <= |gap| <= Excessive → TradableBonus
//	|gap| > Excessive              → ExcessivePenalty (+TradableBonus when StackExcessive)
type GapBands struct {
	Floor            float64 `yaml:"floor" json:"floor"`
	Meaningful       float64 `yaml:"meaningful" json:"meaningful"`
	Tradable         float64 `yaml:"tradable" json:"tradable"`
	Excessive        float64 `yaml:"excessive" json:"excessive"`
	WeakPenalty      float64 `yaml:"weak_penalty" json:"weak_penalty"`
	TradableBonus    float64 `yaml:"tradable_bonus" json:"tradable_bonus"`
	ExcessivePenalty float64 `yaml:"excessive_penalty" json:"excessive_penalty"`
	StackExcessive   bool    `yaml:"stack_excessive" json:"stack_excessive"`
}

// Alignment 방향 일치 여부
type Alignment struct {
	Aligned    float64 `yaml:"aligned" json:"aligned"`
	Misaligned float64 `yaml:"misaligned" json:"misaligned"`
}

// Coherence 감성-방향 정합성
type Coherence struct {
	Coherent float64 `yaml:"coherent" json:"coherent"`
	Neutral  float64 `yaml:"neutral" json:"neutral"`
	Conflict float64 `yaml:"conflict" json:"conflict"`
}

// SizeAdjust applies when market cap is known and below MinMarketCap.
type SizeAdjust struct {
	MinMarketCap float64 `yaml:"min_market_cap" json:"min_market_cap"`
	SmallCap     float64 `yaml:"small_cap" json:"small_cap"`
}

// VolumeAdjust applies when volume is known and below MinVolume.
type VolumeAdjust struct {
	MinVolume int64   `yaml:"min_volume" json:"min_volume"`
	LowVolume float64 `yaml:"low_volume" json:"low_volume"`
}

// SurpriseAdjust compares the sign of the EPS surprise with the gap.
type SurpriseAdjust struct {
	Agree    float64 `yaml:"agree" json:"agree"`
	Conflict float64 `yaml:"conflict" json:"conflict"`
}

// Classification S3: 시그널 분류
type Classification struct {
	MinScore         float64 `yaml:"min_score" json:"min_score"`
	StrongGap        float64 `yaml:"strong_gap" json:"strong_gap"`
	MinGap           float64 `yaml:"min_gap" json:"min_gap"`
	RequireDirection bool    `yaml:"require_direction" json:"require_direction"`
}

// Selection S4: 상위 N개 선정
type Selection struct {
	TopN int `yaml:"top_n" json:"top_n"`
}

// Default returns the canonical strategy parameters.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "earnings_gap_v1",
			Version:    "1.0.0",
			Timezone:   "America/New_York",
		},
		Normalization: Normalization{
			DefaultConfidence: 5,
			ConfidenceMin:     1,
			ConfidenceMax:     10,
			GapDisplayDigits:  1,
			SymbolRule:        "required,alpha,min=1,max=5",
		},
		Scoring: Scoring{
			ConfidenceMultiplier: 7,
			ScoreMin:             0,
			ScoreMax:             100,
			Gap: GapBands{
				Floor:            0.5,
				Meaningful:       1.0,
				Tradable:         1.5,
				Excessive:        4.0,
				WeakPenalty:      -15,
				TradableBonus:    20,
				ExcessivePenalty: -15,
			},
			Alignment: Alignment{Aligned: 25, Misaligned: -30},
			Coherence: Coherence{Coherent: 15, Neutral: -10, Conflict: -20},
		},
		Classification: Classification{
			MinScore:         65,
			StrongGap:        1.0,
			MinGap:           0.5,
			RequireDirection: true,
		},
		Selection: Selection{TopN: 5},
	}
}

// BandsFor returns the gap bands for an earnings window, falling back to the default bands.
func (s Scoring) BandsFor(window string) GapBands {
	if b, ok := s.WindowOverrides[window]; ok {
		return b
	}
	return s.Gap
}
