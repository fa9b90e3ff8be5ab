package catalog

import "fmt"

// Verify checks the partition invariants of a: used and unused entities
// partition tables and views by score, and the dead-code percentage matches.
func Verify(a *Analysis) error {
	if err := verifyPartition("tables", a.Tables, a.UsedTables, a.UnusedTables); err != nil {
		return err
	}
	if err := verifyPartition("views", a.Views, a.UsedViews, a.UnusedViews); err != nil {
		return err
	}

	want := DeadCodePercentage(len(a.UnusedTables)+len(a.UnusedViews), len(a.Tables)+len(a.Views))
	if a.DeadCodePercentage != want {
		return fmt.Errorf("dead code percentage is %.2f, expected %.2f", a.DeadCodePercentage, want)
	}
	if a.TotalOperations != len(a.Operations) {
		return fmt.Errorf("total operations is %d, expected %d", a.TotalOperations, len(a.Operations))
	}

	tables := make(map[string]struct{}, len(a.Tables))
	for _, e := range a.Tables {
		tables[e.Name] = struct{}{}
	}
	for _, v := range a.Views {
		if _, ok := tables[v.Name]; ok {
			return fmt.Errorf("%q is catalogued as both a table and a view", v.Name)
		}
	}
	return nil
}

func verifyPartition(label string, all, used, unused []*Entity) error {
	if len(used)+len(unused) != len(all) {
		return fmt.Errorf("%s: %d used + %d unused != %d total", label, len(used), len(unused), len(all))
	}
	for _, e := range used {
		if e.IsDead() {
			return fmt.Errorf("%s: %q is dead but listed as used", label, e.Name)
		}
	}
	for _, e := range unused {
		if !e.IsDead() {
			return fmt.Errorf("%s: %q is live but listed as unused", label, e.Name)
		}
	}
	return nil
}
