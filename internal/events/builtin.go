package events

import "github.com/ppiankov/concordia/internal/model"

// Builtin returns the five reference events
func Builtin() []model.Event {
	return []model.Event{
		{
			ID:          "election_1860",
			Name:        "Election Night 1860",
			Description: "Abraham Lincoln's election as President in November 1860.",
			Keywords: []string{
				"election of 1860", "election night", "November 1860",
				"presidential election", "Lincoln elected", "ballots",
			},
		},
		{
			ID:          "fort_sumter",
			Name:        "Fort Sumter Decision",
			Description: "Decisions around provisioning or evacuating Fort Sumter in early 1861.",
			Keywords: []string{
				"Fort Sumter", "Charleston harbor", "Anderson", "resupply",
				"Sumter", "Charleston", "batteries", "Coast of South Carolina",
			},
		},
		{
			ID:          "gettysburg_address",
			Name:        "Gettysburg Address",
			Description: "Lincoln's speech dedicating the cemetery at Gettysburg.",
			Keywords: []string{
				"Gettysburg Address", "four score and seven", "cemetery dedication",
				"Gettysburg", "battlefield", "speech at Gettysburg",
			},
		},
		{
			ID:          "second_inaugural",
			Name:        "Second Inaugural Address",
			Description: "Lincoln's second inaugural address in March 1865.",
			Keywords: []string{
				"second inaugural", "with malice toward none", "inaugural address",
				"March 4, 1865", "inauguration", "second term",
			},
		},
		{
			ID:          "fords_theatre",
			Name:        "Ford's Theatre Assassination",
			Description: "Abraham Lincoln's assassination at Ford's Theatre on April 14, 1865.",
			Keywords: []string{
				"Ford's Theatre", "assassination", "John Wilkes Booth",
				"April 14, 1865", "shot", "balcony", "Washington theatre",
			},
		},
	}
}

// Default builds a registry from the builtin table
func Default() *Registry {
	r, err := NewRegistry(Builtin())
	if err != nil {
		panic("events: builtin registry is invalid: " + err.Error())
	}
	return r
}
