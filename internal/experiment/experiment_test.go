package experiment

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ppiankov/concordia/internal/aggregate"
	"github.com/ppiankov/concordia/internal/events"
	"github.com/ppiankov/concordia/internal/judge"
	"github.com/ppiankov/concordia/internal/llm"
	"github.com/ppiankov/concordia/internal/model"
)

// mockProvider answers per strategy from the system prompt, or from a queue
type mockProvider struct {
	byStrategy map[model.Strategy]string
	queue      []string
	fail       error
	requests   []llm.GenerateRequest
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.requests = append(m.requests, req)
	if m.fail != nil {
		return nil, m.fail
	}
	if len(m.queue) > 0 {
		text := m.queue[0]
		m.queue = m.queue[1:]
		return &llm.GenerateResponse{Text: text}, nil
	}
	strategy := model.StrategyZeroShot
	switch {
	case strings.Contains(req.System, "step by step"):
		strategy = model.StrategyCoT
	case strings.Contains(req.System, "study the example"):
		strategy = model.StrategyFewShot
	}
	return &llm.GenerateResponse{Text: m.byStrategy[strategy]}, nil
}

type memoryLog struct {
	records []any
}

func (l *memoryLog) Append(v any) error {
	l.records = append(l.records, v)
	return nil
}

func grouped() *aggregate.Grouped {
	return aggregate.GroupClaims([]model.ClaimRecord{
		{Event: "fort_sumter", DocID: "loc_1", Claims: []string{"I ordered the fort resupplied."}},
		{Event: "fort_sumter", DocID: "gutenberg_1", Claims: []string{"Lincoln sent bread, not bullets."}},
		{Event: "election_1860", DocID: "misc_1", Claims: []string{"Unknown source only."}},
	}, events.Default())
}

func testConfig() Config {
	return Config{Model: "m", Temperature: 0.2, SelfConsistencyRuns: 5, SelfConsistencyTemperature: 0.7}
}

func TestBuildStrategyPrompt(t *testing.T) {
	req := judge.Request{EventID: "fort_sumter", EventName: "Fort Sumter Decision", OtherClaims: []string{"x"}}

	zs, zsUser := BuildStrategyPrompt(req, model.StrategyZeroShot)
	cot, _ := BuildStrategyPrompt(req, model.StrategyCoT)
	few, fewUser := BuildStrategyPrompt(req, model.StrategyFewShot)

	if zs != baseSystem {
		t.Errorf("Expected base system prompt for zero_shot, got %s", zs)
	}
	if !strings.HasSuffix(cot, "Think step by step before producing your final JSON answer.") {
		t.Errorf("Unexpected cot system prompt: %s", cot)
	}
	if !strings.Contains(few, "Then apply the same format.") {
		t.Errorf("Unexpected few_shot system prompt: %s", few)
	}
	if strings.Contains(zsUser, "example_event") || !strings.Contains(fewUser, `"event": "example_event"`) {
		t.Error("Expected example block only for few_shot")
	}
	if !strings.Contains(zsUser, "Set A: Claims from Abraham Lincoln's own writings\n  (none)\n") {
		t.Errorf("Expected empty Lincoln set marker, got %s", zsUser)
	}
}

func TestExtractConsistency(t *testing.T) {
	cases := []struct {
		raw  string
		want int
		ok   bool
	}{
		{`{"overall_consistency": 64}`, 64, true},
		{"Reasoning first.\n```json\n{\"overall_consistency\": \"91\"}\n```", 91, true},
		{`{"overall_consistency": 250}`, 100, true},
		{`{"overall_consistency": null}`, 50, false},
		{`{"agreement_examples": []}`, 50, false},
		{`I think about 70.`, 50, false},
		{``, 50, false},
	}
	for _, tc := range cases {
		got, ok := ExtractConsistency(tc.raw)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ExtractConsistency(%q) = (%d, %v), expected (%d, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestPromptRobustness(t *testing.T) {
	provider := &mockProvider{byStrategy: map[model.Strategy]string{
		model.StrategyZeroShot: `{"overall_consistency": 85}`,
		model.StrategyCoT:      `{"overall_consistency": 70}`,
		model.StrategyFewShot:  `no json`,
	}}
	r := NewRunner(provider, events.Default(), testConfig())

	log := &memoryLog{}
	sum, err := r.PromptRobustness(context.Background(), grouped(), log, nil)
	if err != nil {
		t.Fatalf("PromptRobustness failed: %v", err)
	}
	if sum.Written != 3 || len(log.records) != 3 {
		t.Fatalf("Expected 3 records for the one evaluable event, got %d", len(log.records))
	}

	want := []struct {
		strategy model.Strategy
		score    int
	}{
		{model.StrategyZeroShot, 85},
		{model.StrategyCoT, 70},
		{model.StrategyFewShot, 50},
	}
	for i, w := range want {
		rec := log.records[i].(model.StrategyScore)
		if rec.Event != "fort_sumter" || rec.Strategy != w.strategy || rec.OverallConsistency != w.score {
			t.Errorf("Record %d: expected %s=%d, got %+v", i, w.strategy, w.score, rec)
		}
	}
	for _, req := range provider.requests {
		if req.Temperature != 0.2 {
			t.Errorf("Expected temperature 0.2, got %v", req.Temperature)
		}
	}
}

func TestPromptRobustness_Resume(t *testing.T) {
	provider := &mockProvider{byStrategy: map[model.Strategy]string{model.StrategyFewShot: `{"overall_consistency": 10}`}}
	r := NewRunner(provider, events.Default(), testConfig())

	done := map[StrategyKey]bool{
		{Event: "fort_sumter", Strategy: model.StrategyZeroShot}: true,
		{Event: "fort_sumter", Strategy: model.StrategyCoT}:      true,
	}
	log := &memoryLog{}
	sum, _ := r.PromptRobustness(context.Background(), grouped(), log, done)
	if sum.Resumed != 2 || sum.Written != 1 || len(provider.requests) != 1 {
		t.Errorf("Expected only few_shot to run, got %+v with %d calls", sum, len(provider.requests))
	}
}

func TestSelfConsistency(t *testing.T) {
	provider := &mockProvider{queue: []string{
		`{"overall_consistency": 80}`,
		`{"overall_consistency": 90}`,
		`{"overall_consistency": 70}`,
		`{"overall_consistency": 80}`,
		`{"overall_consistency": 80}`,
	}}
	r := NewRunner(provider, events.Default(), testConfig())

	log := &memoryLog{}
	sum, err := r.SelfConsistency(context.Background(), grouped(), log, nil)
	if err != nil {
		t.Fatalf("SelfConsistency failed: %v", err)
	}
	if sum.Written != 1 {
		t.Fatalf("Expected 1 record, got %+v", sum)
	}

	rec := log.records[0].(model.SelfConsistency)
	if len(rec.Runs) != 5 || rec.Strategy != model.StrategyCoT {
		t.Errorf("Unexpected record: %+v", rec)
	}
	if rec.Mean != 80 || rec.Min != 70 || rec.Max != 90 {
		t.Errorf("Expected mean 80, min 70, max 90, got %+v", rec)
	}
	wantStd := math.Sqrt(40)
	if math.Abs(rec.Std-wantStd) > 1e-9 {
		t.Errorf("Expected std %v, got %v", wantStd, rec.Std)
	}
	if math.Abs(rec.CoefficientOfVariation-wantStd/80) > 1e-9 {
		t.Errorf("Unexpected coefficient of variation %v", rec.CoefficientOfVariation)
	}

	for i, req := range provider.requests {
		if req.Temperature != 0.7 || req.Sample != i {
			t.Errorf("Request %d: expected temperature 0.7 and sample %d, got %v/%d", i, i, req.Temperature, req.Sample)
		}
		if !strings.Contains(req.System, "step by step") {
			t.Errorf("Request %d: expected cot strategy", i)
		}
	}
}

func TestSelfConsistency_ZeroMean(t *testing.T) {
	provider := &mockProvider{queue: []string{
		`{"overall_consistency": 0}`, `{"overall_consistency": -3}`, `{"overall_consistency": 0}`,
	}}
	cfg := testConfig()
	cfg.SelfConsistencyRuns = 3
	r := NewRunner(provider, events.Default(), cfg)

	log := &memoryLog{}
	_, _ = r.SelfConsistency(context.Background(), grouped(), log, nil)
	rec := log.records[0].(model.SelfConsistency)
	if rec.Mean != 0 || rec.CoefficientOfVariation != 0 {
		t.Errorf("Expected zero mean and cv, got %+v", rec)
	}
}

func TestSelfConsistency_FailureSkipsEvent(t *testing.T) {
	provider := &mockProvider{fail: errors.New("rate limited")}
	r := NewRunner(provider, events.Default(), testConfig())

	log := &memoryLog{}
	sum, err := r.SelfConsistency(context.Background(), grouped(), log, nil)
	if err != nil {
		t.Fatalf("Expected per-event failure to be absorbed, got %v", err)
	}
	if sum.Failed != 1 || len(log.records) != 0 {
		t.Errorf("Expected 1 failure and no records, got %+v", sum)
	}
}

func robustnessRows() []model.StrategyScore {
	return []model.StrategyScore{
		{Event: "a", EventName: "A", Strategy: model.StrategyZeroShot, OverallConsistency: 85},
		{Event: "a", EventName: "A", Strategy: model.StrategyCoT, OverallConsistency: 60},
		{Event: "a", EventName: "A", Strategy: model.StrategyFewShot, OverallConsistency: 90},
		{Event: "b", Strategy: model.StrategyZeroShot, OverallConsistency: 40},
		{Event: "b", Strategy: model.StrategyCoT, OverallConsistency: 45},
		{Event: "c", EventName: "C", Strategy: model.StrategyZeroShot, OverallConsistency: 55},
		{Event: "c", EventName: "C", Strategy: model.StrategyCoT, OverallConsistency: 75},
		{Event: "c", EventName: "C", Strategy: model.StrategyFewShot, OverallConsistency: 30},
	}
}

func TestInterRater(t *testing.T) {
	out := InterRater(robustnessRows())
	if len(out) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(out))
	}

	a := out[0]
	if a.Event != "a" || a.EventName != "A" || len(a.StrategyScores) != 3 {
		t.Errorf("Unexpected first record: %+v", a)
	}
	if a.Range != 30 || math.Abs(a.Mean-235.0/3) > 1e-9 {
		t.Errorf("Expected range 30 and mean 78.33, got %d / %v", a.Range, a.Mean)
	}

	b := out[1]
	if b.EventName != "b" {
		t.Errorf("Expected event name fallback to id, got %q", b.EventName)
	}
	if b.Mean != 42.5 || b.Std != 2.5 || b.Range != 5 {
		t.Errorf("Unexpected dispersion for b: %+v", b)
	}
}

func TestInterRater_SingleScore(t *testing.T) {
	out := InterRater([]model.StrategyScore{{Event: "x", Strategy: model.StrategyCoT, OverallConsistency: 77}})
	if len(out) != 1 || out[0].Std != 0 || out[0].Range != 0 || out[0].Mean != 77 {
		t.Errorf("Unexpected single-score summary: %+v", out)
	}
}

func TestKappa(t *testing.T) {
	rec, ok := Kappa(robustnessRows())
	if !ok {
		t.Fatal("Expected qualifying events")
	}
	if len(rec.Events) != 2 || rec.Events[0] != "a" || rec.Events[1] != "c" {
		t.Errorf("Expected events a and c, got %v", rec.Events)
	}

	wantLabels := map[model.Strategy][]model.Category{
		model.StrategyZeroShot: {model.CategoryHigh, model.CategoryMedium},
		model.StrategyCoT:      {model.CategoryMedium, model.CategoryMedium},
		model.StrategyFewShot:  {model.CategoryHigh, model.CategoryLow},
	}
	for st, want := range wantLabels {
		got := rec.CategoryLabels[st]
		if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("%s: expected %v, got %v", st, want, got)
		}
	}

	for _, pair := range KappaPairs {
		k, has := rec.Kappa[pair.Name]
		if !has {
			t.Errorf("Expected kappa for %s", pair.Name)
		}
		if k < -1 || k > 1 {
			t.Errorf("%s: kappa %v out of bounds", pair.Name, k)
		}
	}
	// zero: H M, cot: M M -> po=0.5, pe=0.5 -> 0
	if rec.Kappa["zero_vs_cot"] != 0 {
		t.Errorf("Expected zero_vs_cot kappa 0, got %v", rec.Kappa["zero_vs_cot"])
	}
}

func TestKappa_NoQualifyingEvents(t *testing.T) {
	rows := []model.StrategyScore{{Event: "b", Strategy: model.StrategyZeroShot, OverallConsistency: 40}}
	if _, ok := Kappa(rows); ok {
		t.Error("Expected ok=false when no event has all strategies")
	}
}
