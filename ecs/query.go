package ecs

// IntersectEntities returns entity IDs present in every set, in the dense
// order of the smallest one. A nil set yields nil.
func IntersectEntities(sets ...*SparseSet) []int {
	if len(sets) == 0 {
		return nil
	}
	smallest := sets[0]
	for _, s := range sets {
		if s == nil {
			return nil
		}
		if s.Len() < smallest.Len() {
			smallest = s
		}
	}

	out := make([]int, 0, smallest.Len())
outer:
	for _, id := range smallest.denseEntities {
		for _, s := range sets {
			if s != smallest && !s.Has(id) {
				continue outer
			}
		}
		out = append(out, id)
	}
	return out
}
