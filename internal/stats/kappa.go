package stats

import (
	"fmt"

	"github.com/ppiankov/concordia/internal/model"
)

// CohenKappa measures agreement between two raters beyond chance:
//
//	kappa = (Po - Pe) / (1 - Pe)
//
// Po is the observed agreement rate and Pe the chance agreement implied by
// each rater's category marginals. Empty input yields 0. When Pe is 1 (both
// raters used a single identical category throughout) kappa is defined as 1.
func CohenKappa(a, b []model.Category) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("label sequences differ in length: %d vs %d", len(a), len(b))
	}
	n := len(a)
	if n == 0 {
		return 0, nil
	}

	freqA := make(map[model.Category]int)
	freqB := make(map[model.Category]int)
	agree := 0
	for i := range a {
		freqA[a[i]]++
		freqB[b[i]]++
		if a[i] == b[i] {
			agree++
		}
	}

	po := float64(agree) / float64(n)

	var pe float64
	for c, fa := range freqA {
		pe += (float64(fa) / float64(n)) * (float64(freqB[c]) / float64(n))
	}

	if pe >= 1 {
		return 1, nil
	}
	return (po - pe) / (1 - pe), nil
}
