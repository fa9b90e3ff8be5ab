package catalog

import "math"

// ClassifyUsage scores every entity of a against the observed usage operations:
// 100 when any usage operation names the entity exactly, 0 otherwise. Prior scores
// are overwritten. Partitions and the dead-code percentage are recomputed.
func ClassifyUsage(a *Analysis, usage []Operation) *Analysis {
	referenced := make(map[string]struct{}, len(usage))
	for _, op := range usage {
		referenced[op.Table] = struct{}{}
	}

	for _, group := range [][]*Entity{a.Tables, a.Views} {
		for _, e := range group {
			if _, ok := referenced[e.Name]; ok {
				e.LiveCodeScore = ScoreLive
			} else {
				e.LiveCodeScore = ScoreDead
			}
		}
	}

	partition(a)
	return a
}

// partition rebuilds the used/unused partitions and dead-code percentage from
// the current scores.
func partition(a *Analysis) {
	a.UsedTables, a.UnusedTables = split(a.Tables)
	a.UsedViews, a.UnusedViews = split(a.Views)
	a.DeadCodePercentage = DeadCodePercentage(len(a.UnusedTables)+len(a.UnusedViews), len(a.Tables)+len(a.Views))
}

func split(entities []*Entity) (used, unused []*Entity) {
	used, unused = []*Entity{}, []*Entity{}
	for _, e := range entities {
		if e.IsDead() {
			unused = append(unused, e)
		} else {
			used = append(used, e)
		}
	}
	return used, unused
}

// DeadCodePercentage returns 100*dead/total rounded to two decimals, or 0 when
// total is 0.
func DeadCodePercentage(dead, total int) float64 {
	if total == 0 {
		return 0
	}
	pct := 100 * float64(dead) / float64(total)
	return math.Round(pct*100) / 100
}
