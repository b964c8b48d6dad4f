package stats

import (
	"math"
	"math/rand"
	"testing"

	"github.com/ppiankov/concordia/internal/model"
)

const eps = 1e-9

func TestSummarize(t *testing.T) {
	s := Summarize([]int{70, 80, 90, 80, 80})

	if s.Mean != 80 {
		t.Errorf("Expected mean 80, got %v", s.Mean)
	}
	if s.Min != 70 || s.Max != 90 || s.Range != 20 {
		t.Errorf("Expected min 70 max 90 range 20, got %d %d %d", s.Min, s.Max, s.Range)
	}
	// pstdev: sqrt((100+0+100+0+0)/5) = sqrt(40)
	if math.Abs(s.Std-math.Sqrt(40)) > eps {
		t.Errorf("Expected std sqrt(40), got %v", s.Std)
	}
	if math.Abs(s.CV-math.Sqrt(40)/80) > eps {
		t.Errorf("Expected cv std/mean, got %v", s.CV)
	}
}

func TestSummarize_Edges(t *testing.T) {
	if s := Summarize(nil); s != (Summary{}) {
		t.Errorf("Expected zero summary for empty input, got %+v", s)
	}

	single := Summarize([]int{42})
	if single.Std != 0 || single.Range != 0 || single.Mean != 42 {
		t.Errorf("Unexpected single-value summary: %+v", single)
	}

	zeros := Summarize([]int{0, 0, 0})
	if zeros.CV != 0 {
		t.Errorf("Expected cv 0 when mean is 0, got %v", zeros.CV)
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		score int
		want  model.Category
	}{
		{100, model.CategoryHigh},
		{80, model.CategoryHigh},
		{79, model.CategoryMedium},
		{50, model.CategoryMedium},
		{49, model.CategoryLow},
		{0, model.CategoryLow},
	}
	for _, tt := range tests {
		if got := Categorize(tt.score); got != tt.want {
			t.Errorf("Categorize(%d) = %s, expected %s", tt.score, got, tt.want)
		}
	}
}

func TestCohenKappa_Identical(t *testing.T) {
	labels := []model.Category{model.CategoryHigh, model.CategoryLow, model.CategoryMedium, model.CategoryHigh}
	k, err := CohenKappa(labels, labels)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(k-1) > eps {
		t.Errorf("Expected kappa 1 for identical sequences, got %v", k)
	}
}

func TestCohenKappa_Degenerate(t *testing.T) {
	a := []model.Category{model.CategoryMedium, model.CategoryMedium, model.CategoryMedium}
	k, err := CohenKappa(a, a)
	if err != nil {
		t.Fatal(err)
	}
	if k != 1 {
		t.Errorf("Expected kappa 1 when chance agreement is 1, got %v", k)
	}
}

func TestCohenKappa_Empty(t *testing.T) {
	k, err := CohenKappa(nil, nil)
	if err != nil || k != 0 {
		t.Errorf("Expected 0, nil for empty input, got %v, %v", k, err)
	}
}

func TestCohenKappa_LengthMismatch(t *testing.T) {
	if _, err := CohenKappa([]model.Category{model.CategoryHigh}, nil); err == nil {
		t.Error("Expected error for mismatched lengths")
	}
}

func TestCohenKappa_KnownValue(t *testing.T) {
	// a = H H L L, b = H L L H: Po = 0.5
	// both marginals H .5 L .5: Pe = 0.5, kappa = 0
	a := []model.Category{model.CategoryHigh, model.CategoryHigh, model.CategoryLow, model.CategoryLow}
	b := []model.Category{model.CategoryHigh, model.CategoryLow, model.CategoryLow, model.CategoryHigh}
	k, err := CohenKappa(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(k) > eps {
		t.Errorf("Expected kappa 0, got %v", k)
	}

	// Complete disagreement with balanced marginals gives -1
	c := []model.Category{model.CategoryLow, model.CategoryLow, model.CategoryHigh, model.CategoryHigh}
	k, err = CohenKappa(a, c)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(k+1) > eps {
		t.Errorf("Expected kappa -1, got %v", k)
	}
}

func TestCohenKappa_Bounds(t *testing.T) {
	cats := []model.Category{model.CategoryHigh, model.CategoryMedium, model.CategoryLow}
	rng := rand.New(rand.NewSource(1863))

	for trial := 0; trial < 500; trial++ {
		n := 1 + rng.Intn(12)
		a := make([]model.Category, n)
		b := make([]model.Category, n)
		for i := 0; i < n; i++ {
			a[i] = cats[rng.Intn(len(cats))]
			b[i] = cats[rng.Intn(len(cats))]
		}
		k, err := CohenKappa(a, b)
		if err != nil {
			t.Fatal(err)
		}
		if k < -1-eps || k > 1+eps || math.IsNaN(k) {
			t.Fatalf("Kappa out of bounds for %v vs %v: %v", a, b, k)
		}
	}
}
