package planner

// Stock and waste the kitchen assumes for an ingredient nobody has counted yet.
const (
	DefaultCurrentStock = 5000.0
	DefaultWaste        = 0.0
)

// DefaultIngredientStates builds a state for every BOM entry using the given values.
func DefaultIngredientStates(bom []BOMEntry, stock, waste float64) map[string]IngredientState {
	states := make(map[string]IngredientState, len(bom))
	for _, e := range bom {
		states[e.Ingredient] = IngredientState{CurrentStock: stock, Waste: waste}
	}
	return states
}

// FillMissingStates returns a copy of states with an entry added for every BOM
// ingredient that has none. The planner itself never does this; callers opt in.
func FillMissingStates(bom []BOMEntry, states map[string]IngredientState, stock, waste float64) map[string]IngredientState {
	out := DefaultIngredientStates(bom, stock, waste)
	for k, v := range states {
		out[k] = v
	}
	return out
}
