package ecs

// entityStore tracks entity generations and free ids.
type entityStore struct {
	gen  []int
	live []bool
	free []int
}

func (s *entityStore) create() Entity {
	var id int
	if len(s.free) > 0 {
		id = s.free[len(s.free)-1]
		s.free = s.free[:len(s.free)-1]
	} else {
		s.gen = append(s.gen, 0)
		s.live = append(s.live, false)
		id = len(s.gen)
	}
	s.live[id-1] = true
	return Entity{ID: id, Gen: s.gen[id-1]}
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	idx := e.ID - 1
	s.gen[idx]++
	s.live[idx] = false
	s.free = append(s.free, e.ID)
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	if e.ID <= 0 || e.ID > len(s.gen) {
		return false
	}
	return s.live[e.ID-1] && s.gen[e.ID-1] == e.Gen
}

// handle returns the live entity for id.
func (s *entityStore) handle(id int) (Entity, bool) {
	if id <= 0 || id > len(s.gen) || !s.live[id-1] {
		return Entity{}, false
	}
	return Entity{ID: id, Gen: s.gen[id-1]}, true
}

func (s *entityStore) count() int {
	return len(s.gen) - len(s.free)
}
