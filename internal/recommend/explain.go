package recommend

import (
	"sort"

	"github.com/spboyer/stratafit/internal/models"
)

// explain turns the shortlist into ranked entries: de-duplicated rationale
// and risks, plus the relationships between the framework and the rest of
// the shortlist.
func explain(shortlist []candidate) []models.RankedFramework {
	inList := make(map[string]bool, len(shortlist))
	for _, c := range shortlist {
		inList[c.def.ID] = true
	}

	out := make([]models.RankedFramework, 0, len(shortlist))
	for i, c := range shortlist {
		rf := models.RankedFramework{
			Rank:      i + 1,
			ID:        c.def.ID,
			Name:      c.def.Name,
			Category:  c.def.Category,
			Score:     c.result.Score,
			Rationale: dedupe(c.result.Rationale),
			Factors:   c.result.Factors,
		}
		if len(rf.Rationale) == 0 {
			rf.Rationale = []string{"General fit; no specific signal matched"}
		}

		risks := append([]string(nil), c.result.Risks...)
		if c.record != nil {
			risks = append(risks, c.record.CommonPitfalls...)
			rf.Requirements = dedupe(c.record.Prerequisites)
		}
		rf.Risks = dedupe(risks)

		rf.Complementary = complementary(c, shortlist, inList)
		rf.Prerequisites = targets(c.def, models.RelationPrerequisite)
		rf.NextSteps = targets(c.def, models.RelationProgressive)
		out = append(out, rf)
	}
	return out
}

// complementary lists shortlisted frameworks linked to c as complementary in
// either direction.
func complementary(c candidate, shortlist []candidate, inList map[string]bool) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != c.def.ID && inList[id] && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, r := range c.def.Relationships {
		if r.Kind == models.RelationComplementary {
			add(r.Target)
		}
	}
	for _, other := range shortlist {
		for _, r := range other.def.Relationships {
			if r.Kind == models.RelationComplementary && r.Target == c.def.ID {
				add(other.def.ID)
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// targets returns the targets of def's relationships of the given kind,
// strongest first.
func targets(def *models.FrameworkDefinition, kind models.RelationKind) []string {
	var rels []models.Relationship
	for _, r := range def.Relationships {
		if r.Kind == kind {
			rels = append(rels, r)
		}
	}
	sort.SliceStable(rels, func(i, j int) bool {
		if rels[i].Strength != rels[j].Strength {
			return rels[i].Strength > rels[j].Strength
		}
		return rels[i].Target < rels[j].Target
	})
	ids := make([]string, len(rels))
	for i, r := range rels {
		ids[i] = r.Target
	}
	if len(ids) == 0 {
		return nil
	}
	return ids
}

func dedupe(lines []string) []string {
	if len(lines) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(lines))
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	return out
}
