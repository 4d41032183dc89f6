package pattern

import "github.com/storyloom/workshop-mcp/internal/models"

// defaultPatterns is the canonical pattern set seeded on first use.
// Stage order encodes narrative sequence.
func defaultPatterns() map[string]models.Pattern {
	return map[string]models.Pattern{
		"heroes_journey": {
			ID:          "heroes_journey",
			Name:        "Hero's Journey",
			Description: "The classic monomyth structure identified by Joseph Campbell",
			Stages: []string{
				"Ordinary World",
				"Call to Adventure",
				"Refusal of the Call",
				"Meeting the Mentor",
				"Crossing the Threshold",
				"Tests, Allies, Enemies",
				"Approach to the Inmost Cave",
				"Ordeal",
				"Reward",
				"The Road Back",
				"Resurrection",
				"Return with the Elixir",
			},
			PsychologicalFunctions: []string{
				"Self-discovery",
				"Integration of shadow aspects",
				"Individuation",
			},
			Examples: []string{
				"Star Wars: A New Hope",
				"The Lord of the Rings",
				"The Matrix",
			},
		},
		"transformation": {
			ID:          "transformation",
			Name:        "Transformation",
			Description: "A pattern focused on character or societal change and growth",
			Stages: []string{
				"Status Quo",
				"Disruption",
				"Resistance",
				"Struggle",
				"Discovery",
				"Integration",
				"New Normal",
			},
			PsychologicalFunctions: []string{
				"Personal growth",
				"Acceptance of change",
				"Evolution of identity",
			},
			Examples: []string{
				"A Christmas Carol",
				"Jane Eyre",
				"Groundhog Day",
			},
		},
		"voyage_and_return": {
			ID:          "voyage_and_return",
			Name:        "Voyage and Return",
			Description: "A journey to an unfamiliar place, followed by a return with new perspective",
			Stages: []string{
				"The Ordinary World",
				"The Journey Begins",
				"The Strange New World",
				"The Challenge",
				"The Return",
			},
			PsychologicalFunctions: []string{
				"Expanding perspective",
				"Appreciating home/origins",
				"Adapting to new environments",
			},
			Examples: []string{
				"The Wizard of Oz",
				"Alice in Wonderland",
				"The Hobbit",
			},
		},
	}
}

// themeBucket maps a theme keyword to related words for semantic scoring.
type themeBucket struct {
	theme    string
	synonyms []string
}

// themeBuckets is the fixed synonym table used by the semantic fallback.
var themeBuckets = []themeBucket{
	{"beginning", []string{"start", "initiation", "genesis", "birth"}},
	{"journey", []string{"path", "voyage", "travel", "adventure"}},
	{"transformation", []string{"change", "evolution", "metamorphosis"}},
	{"challenge", []string{"test", "trial", "difficulty", "obstacle"}},
	{"awakening", []string{"realization", "discovery", "enlightenment"}},
	{"integration", []string{"unification", "harmony", "balance"}},
	{"transcendence", []string{"ascension", "elevation", "enlightenment"}},
}
