package pipeline

import (
	"errors"
	"fmt"

	"github.com/ppiankov/concordia/internal/model"
	"github.com/ppiankov/concordia/internal/store"
)

// Report holds whichever result logs exist
type Report struct {
	Judgments       []model.Judgment
	InterRater      []model.InterRater
	SelfConsistency []model.SelfConsistency
	Kappa           *model.KappaInterRater
}

// Empty reports whether no result log was found
func (r *Report) Empty() bool {
	return len(r.Judgments) == 0 && len(r.InterRater) == 0 && len(r.SelfConsistency) == 0 && r.Kappa == nil
}

// optional reads path, treating a missing file as no records
func optional[T any](path string) ([]T, error) {
	records, err := store.ReadJSONL[T](path)
	if errors.Is(err, store.ErrInputMissing) {
		return nil, nil
	}
	return records, err
}

// LoadReport reads the judge and experiment outputs
func (p *Pipeline) LoadReport() (*Report, error) {
	paths := p.config.Paths
	var rep Report
	var err error

	if rep.Judgments, err = optional[model.Judgment](paths.Consistency); err != nil {
		return nil, err
	}
	if rep.InterRater, err = optional[model.InterRater](paths.InterRater); err != nil {
		return nil, err
	}
	if rep.SelfConsistency, err = optional[model.SelfConsistency](paths.SelfConsistency); err != nil {
		return nil, err
	}
	kappa, err := optional[model.KappaInterRater](paths.Kappa)
	if err != nil {
		return nil, err
	}
	if len(kappa) > 0 {
		rep.Kappa = &kappa[len(kappa)-1]
	}

	if rep.Empty() {
		return nil, fmt.Errorf("%w: no results under %s or %s", store.ErrInputMissing, paths.Consistency, paths.PromptRobustness)
	}
	return &rep, nil
}

// RenderReport prints every section that has data
func (r *Renderer) RenderReport(rep *Report) {
	if len(rep.Judgments) > 0 {
		r.RenderJudgments(rep.Judgments)
	}
	if len(rep.InterRater) > 0 {
		r.RenderInterRater(rep.InterRater)
	}
	if len(rep.SelfConsistency) > 0 {
		r.RenderSelfConsistency(rep.SelfConsistency)
	}
	if rep.Kappa != nil {
		r.RenderKappa(*rep.Kappa)
	}
}
