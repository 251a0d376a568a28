package ecs

import "strconv"

// Entity is a generational handle into a World. The zero Entity is never
// alive.
type Entity struct {
	ID  int
	Gen int
}

func (e Entity) id() int {
	return e.ID
}

func (e Entity) Valid() bool {
	return e.ID > 0
}

func (e Entity) String() string {
	return strconv.Itoa(e.ID) + "v" + strconv.Itoa(e.Gen)
}
