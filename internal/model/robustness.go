package model

// Strategy is a prompting strategy for the consistency judge
type Strategy string

const (
	StrategyZeroShot Strategy = "zero_shot" // Baseline
	StrategyCoT      Strategy = "cot"       // Reasoning-elicited
	StrategyFewShot  Strategy = "few_shot"  // Exemplar-primed
)

// Strategies lists every strategy in rater order
var Strategies = []Strategy{StrategyZeroShot, StrategyCoT, StrategyFewShot}

// StrategyScore is one prompt-robustness record
type StrategyScore struct {
	Event              string   `json:"event"`
	EventName          string   `json:"event_name"`
	Strategy           Strategy `json:"strategy"`
	OverallConsistency int      `json:"overall_consistency"`
}

// SelfConsistency holds repeated-sampling scores for one event
type SelfConsistency struct {
	Event                  string   `json:"event"`
	EventName              string   `json:"event_name"`
	Strategy               Strategy `json:"strategy"`
	Runs                   []int    `json:"runs"`
	Mean                   float64  `json:"mean"`
	Min                    int      `json:"min"`
	Max                    int      `json:"max"`
	Std                    float64  `json:"std"`
	CoefficientOfVariation float64  `json:"coefficient_of_variation"`
}

// InterRater summarizes strategy-score dispersion for one event
type InterRater struct {
	Event          string           `json:"event"`
	EventName      string           `json:"event_name"`
	StrategyScores map[Strategy]int `json:"strategy_scores"`
	Mean           float64          `json:"mean"`
	Std            float64          `json:"std"`
	Range          int              `json:"range"`
}

// Category is the binned form of a consistency score
type Category string

const (
	CategoryHigh   Category = "high"   // score >= 80
	CategoryMedium Category = "medium" // 50 <= score < 80
	CategoryLow    Category = "low"    // score < 50
)

// KappaInterRater is the single aggregate agreement record
type KappaInterRater struct {
	Events         []string                `json:"events"`
	CategoryLabels map[Strategy][]Category `json:"category_labels"`
	Kappa          map[string]float64      `json:"kappa"`
}
