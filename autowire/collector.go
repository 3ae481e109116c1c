package autowire

// Collection is the output of collecting component definitions from
// scanned scopes: component keys in discovery order plus their raw
// definitions and declared dependency names.
type Collection struct {
	// Order lists component keys in discovery order: scope registration
	// order, then declaration order within a scope.
	Order []string

	// Defs maps each key to its definition.
	Defs map[string]ComponentDef
}

// Key derives the scope-qualified component key for a definition name.
func Key(scope, name string) string { return scope + "/" + name }

// Collect inspects scanned scopes and gathers every definition carrying
// the autowired marker. Untagged definitions are silently skipped — they
// are ordinary code, not an error. A later definition with the same key
// replaces an earlier one, keeping the original discovery position.
func Collect(scopes []*Scope) *Collection {
	c := &Collection{Defs: make(map[string]ComponentDef)}

	for _, scope := range scopes {
		for _, def := range scope.Defs() {
			if !def.Autowired {
				continue
			}
			key := Key(scope.Name(), def.Name)
			if _, exists := c.Defs[key]; !exists {
				c.Order = append(c.Order, key)
			}
			c.Defs[key] = def
		}
	}
	return c
}
