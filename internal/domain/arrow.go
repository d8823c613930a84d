package domain

import "encoding/json"

// NoCard marks an arrow endpoint whose card has been removed.
const NoCard = -1

// Arrow is a directed edge between two cards, addressed by their position in
// the board's card list. Indices are not stable identities: deleting a card
// renumbers every endpoint above it.
type Arrow struct {
	FromIndex int `json:"fromIndex"`
	ToIndex   int `json:"toIndex"`
}

// Reversed returns the arrow pointing the other way.
func (a Arrow) Reversed() Arrow {
	return Arrow{FromIndex: a.ToIndex, ToIndex: a.FromIndex}
}

// Dangling reports whether either endpoint has lost its card.
func (a Arrow) Dangling() bool {
	return a.FromIndex == NoCard || a.ToIndex == NoCard
}

func (a *Arrow) UnmarshalJSON(data []byte) error {
	var w struct {
		FromIndex flexInt `json:"fromIndex"`
		ToIndex   flexInt `json:"toIndex"`
	}
	w.FromIndex, w.ToIndex = NoCard, NoCard
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	a.FromIndex, a.ToIndex = int(w.FromIndex), int(w.ToIndex)
	return nil
}
