package pattern

import (
	"math"
	"sort"

	"github.com/storyloom/workshop-mcp/internal/models"
)

// maxHybridStages caps auto-generated hybrid stage lists.
const maxHybridStages = 12

// HybridInput carries the fields for a hybrid pattern. Weights need not
// sum to 1. CustomStages, when given, are used verbatim.
type HybridInput struct {
	Name         string
	Description  string
	Patterns     map[string]float64
	CustomStages []string
}

type weightedPattern struct {
	id      string
	pattern *models.Pattern
	weight  float64
}

// ComposeHybrid blends the referenced patterns into a new one by weighted
// stage sampling and persists it with the component weights recorded.
// Heavier patterns contribute first; the concatenation is truncated at the
// stage cap, so trailing stages from lighter patterns can be dropped. That
// truncation is deliberate and kept.
func (r *Repository) ComposeHybrid(in HybridInput) (*models.Pattern, error) {
	if in.Name == "" {
		return nil, &models.ValidationError{Reason: "pattern name is required"}
	}
	if len(in.Patterns) == 0 {
		return nil, &models.ValidationError{Reason: "at least one component pattern is required"}
	}

	resolved := make([]weightedPattern, 0, len(in.Patterns))
	for id, weight := range in.Patterns {
		p, err := r.Get(id)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, weightedPattern{id: id, pattern: p, weight: weight})
	}
	// Weight descending; ties break on id so output is reproducible.
	sort.Slice(resolved, func(i, j int) bool {
		if resolved[i].weight != resolved[j].weight {
			return resolved[i].weight > resolved[j].weight
		}
		return resolved[i].id < resolved[j].id
	})

	var stages []string
	if len(in.CustomStages) > 0 {
		stages = in.CustomStages
	} else {
		stages = sampleStages(resolved)
	}

	functions := []string{}
	examples := []string{}
	seenFn := map[string]bool{}
	seenEx := map[string]bool{}
	for _, wp := range resolved {
		for _, fn := range wp.pattern.PsychologicalFunctions {
			if !seenFn[fn] {
				seenFn[fn] = true
				functions = append(functions, fn)
			}
		}
		for _, ex := range takeUpTo(wp.pattern.Examples, 2) {
			if !seenEx[ex] {
				seenEx[ex] = true
				examples = append(examples, ex)
			}
		}
	}

	components := make(map[string]float64, len(resolved))
	for _, wp := range resolved {
		components[wp.id] = wp.weight
	}

	hybrid := models.Pattern{
		Name:                   in.Name,
		Description:            in.Description,
		Stages:                 stages,
		PsychologicalFunctions: functions,
		Examples:               examples,
		Hybrid:                 true,
		ComponentPatterns:      components,
		CreatedAt:              nowISO(),
	}
	return r.persist(hybrid)
}

// sampleStages draws stages from each pattern proportionally to its
// weight: n = max(1, round(weight*target)) stages at evenly spaced
// indices, concatenated in weight order and truncated to the target.
func sampleStages(resolved []weightedPattern) []string {
	total := 0
	for _, wp := range resolved {
		total += len(wp.pattern.Stages)
	}
	target := total
	if target > maxHybridStages {
		target = maxHybridStages
	}

	var stages []string
	for _, wp := range resolved {
		src := wp.pattern.Stages
		n := int(math.RoundToEven(wp.weight * float64(target)))
		if n < 1 {
			n = 1
		}
		if n >= len(src) {
			stages = append(stages, src...)
			continue
		}
		if n == 1 {
			// The spacing formula is undefined for a single draw; take
			// the pattern's opening stage.
			stages = append(stages, src[0])
			continue
		}
		for i := 0; i < n; i++ {
			idx := i * (len(src) - 1) / (n - 1)
			stages = append(stages, src[idx])
		}
	}
	if len(stages) > target {
		stages = stages[:target]
	}
	return stages
}

func takeUpTo(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
