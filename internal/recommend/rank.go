package recommend

import (
	"sort"

	"github.com/spboyer/stratafit/internal/models"
	"github.com/spboyer/stratafit/internal/scoring"
	"github.com/spboyer/stratafit/internal/taxonomy"
)

type candidate struct {
	def     *models.FrameworkDefinition
	profile *models.TagProfile
	record  *models.EffectivenessRecord
	result  scoring.Result
}

// sortCandidates orders by score descending, then id ascending.
func sortCandidates(cs []candidate) []candidate {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].result.Score != cs[j].result.Score {
			return cs[i].result.Score > cs[j].result.Score
		}
		return cs[i].def.ID < cs[j].def.ID
	})
	return cs
}

// diversify takes candidates in order while their category is below limit.
// Candidates skipped for their category only fill remaining slots when too
// few categories are eligible to fill the list otherwise. The first
// candidate is always kept.
func diversify(sorted []candidate, maxResults, limit int) []candidate {
	var picked, deferred []candidate
	perCategory := make(map[taxonomy.Category]int)
	distinct := make(map[taxonomy.Category]bool)
	for _, c := range sorted {
		distinct[c.def.Category] = true
	}

	for _, c := range sorted {
		if len(picked) == maxResults {
			break
		}
		if perCategory[c.def.Category] >= limit {
			deferred = append(deferred, c)
			continue
		}
		perCategory[c.def.Category]++
		picked = append(picked, c)
	}

	if len(picked) < maxResults && len(distinct) < limit+1 {
		for _, c := range deferred {
			if len(picked) == maxResults {
				break
			}
			picked = append(picked, c)
		}
		sortCandidates(picked)
	}
	return picked
}
