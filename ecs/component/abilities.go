package component

// Abilities records which optional abilities have been granted to an actor.
type Abilities struct {
	Granted map[string]bool
}

func (a *Abilities) Grant(name string) {
	if a.Granted == nil {
		a.Granted = make(map[string]bool)
	}
	a.Granted[name] = true
}

func (a *Abilities) Has(name string) bool {
	return a != nil && a.Granted[name]
}

var AbilitiesComponent = NewComponent[Abilities]()
