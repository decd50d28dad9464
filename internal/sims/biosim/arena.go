package biosim

// Arena owns every living animal of a simulation, keyed by ID.
type Arena struct {
	animals map[AnimalID]*Animal
	next    AnimalID
}

func newArena() *Arena {
	return &Arena{animals: make(map[AnimalID]*Animal), next: 1}
}

// adopt assigns a fresh ID to a and stores it.
func (ar *Arena) adopt(a *Animal) AnimalID {
	a.id = ar.next
	ar.next++
	ar.animals[a.id] = a
	return a.id
}

// Get returns the animal with the given ID, or nil when it is dead or unknown.
func (ar *Arena) Get(id AnimalID) *Animal { return ar.animals[id] }

func (ar *Arena) release(id AnimalID) { delete(ar.animals, id) }

// Len returns the number of living animals.
func (ar *Arena) Len() int { return len(ar.animals) }

func (ar *Arena) invalidateFitness() {
	for _, a := range ar.animals {
		a.invalidateFitness()
	}
}
