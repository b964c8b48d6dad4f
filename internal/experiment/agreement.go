package experiment

import (
	"github.com/ppiankov/concordia/internal/model"
	"github.com/ppiankov/concordia/internal/stats"
)

// eventScores is one event's strategy scores in first-seen order
type eventScores struct {
	event  string
	name   string
	scores map[model.Strategy]int
}

// byEvent groups prompt-robustness records. A repeated (event, strategy)
// keeps the last score.
func byEvent(rows []model.StrategyScore) []*eventScores {
	var order []*eventScores
	index := make(map[string]*eventScores)
	for _, row := range rows {
		es, ok := index[row.Event]
		if !ok {
			name := row.EventName
			if name == "" {
				name = row.Event
			}
			es = &eventScores{event: row.Event, name: name, scores: make(map[model.Strategy]int)}
			index[row.Event] = es
			order = append(order, es)
		}
		es.scores[row.Strategy] = row.OverallConsistency
	}
	return order
}

// InterRater summarizes the dispersion of strategy scores per event
func InterRater(rows []model.StrategyScore) []model.InterRater {
	var out []model.InterRater
	for _, es := range byEvent(rows) {
		if len(es.scores) == 0 {
			continue
		}
		values := make([]int, 0, len(es.scores))
		for _, st := range orderedStrategies(es.scores) {
			values = append(values, es.scores[st])
		}
		s := stats.Summarize(values)
		out = append(out, model.InterRater{
			Event:          es.event,
			EventName:      es.name,
			StrategyScores: es.scores,
			Mean:           s.Mean,
			Std:            s.Std,
			Range:          s.Range,
		})
	}
	return out
}

// orderedStrategies lists known strategies first, then any others the log carries
func orderedStrategies(scores map[model.Strategy]int) []model.Strategy {
	var out []model.Strategy
	known := make(map[model.Strategy]bool, len(model.Strategies))
	for _, st := range model.Strategies {
		known[st] = true
		if _, ok := scores[st]; ok {
			out = append(out, st)
		}
	}
	for st := range scores {
		if !known[st] {
			out = append(out, st)
		}
	}
	return out
}

// KappaPairs names the strategy pairs compared in the kappa record
var KappaPairs = []struct {
	Name string
	A, B model.Strategy
}{
	{"zero_vs_cot", model.StrategyZeroShot, model.StrategyCoT},
	{"zero_vs_few", model.StrategyZeroShot, model.StrategyFewShot},
	{"cot_vs_few", model.StrategyCoT, model.StrategyFewShot},
}

// Kappa bins strategy scores and computes pairwise Cohen's kappa over the
// events scored by all three strategies. ok is false when no event qualifies.
func Kappa(rows []model.StrategyScore) (rec model.KappaInterRater, ok bool) {
	rec = model.KappaInterRater{
		Events:         []string{},
		CategoryLabels: make(map[model.Strategy][]model.Category, len(model.Strategies)),
		Kappa:          make(map[string]float64, len(KappaPairs)),
	}
	for _, st := range model.Strategies {
		rec.CategoryLabels[st] = []model.Category{}
	}

	for _, es := range byEvent(rows) {
		complete := true
		for _, st := range model.Strategies {
			if _, has := es.scores[st]; !has {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		rec.Events = append(rec.Events, es.event)
		for _, st := range model.Strategies {
			rec.CategoryLabels[st] = append(rec.CategoryLabels[st], stats.Categorize(es.scores[st]))
		}
	}

	if len(rec.Events) == 0 {
		return rec, false
	}

	for _, pair := range KappaPairs {
		// Label sequences share the events slice, so lengths always match
		k, _ := stats.CohenKappa(rec.CategoryLabels[pair.A], rec.CategoryLabels[pair.B])
		rec.Kappa[pair.Name] = k
	}
	return rec, true
}
