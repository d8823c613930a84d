package mcpserver

import (
	"testing"

	"github.com/leth4/leto-sub000/internal/cards"
	"github.com/leth4/leto-sub000/internal/domain"
	"github.com/leth4/leto-sub000/internal/geometry"
)

func textCard(x, y, w, h float64) domain.Card {
	return domain.Card{Type: domain.CardTypeText, Position: geometry.Vec{X: x, Y: y}, Width: w, Height: h}
}

func TestNextPosition_EmptyBoard(t *testing.T) {
	le := NewLayoutEngine()
	if got := le.NextPosition(nil, 480, 360); got != (geometry.Vec{}) {
		t.Errorf("expected origin for empty board, got %v", got)
	}
}

func TestNextPosition_AvoidsExistingCards(t *testing.T) {
	le := NewLayoutEngine()
	existing := []domain.Card{
		textCard(0, 0, 480, 360),
		textCard(560, 0, 480, 360),
	}
	pos := le.NextPosition(existing, 300, 200)
	candidate := geometry.RectAt(pos, 300, 200)
	for _, c := range existing {
		f := cards.Frame(c)
		padded := geometry.Rect{X: f.X - Padding, Y: f.Y - Padding, W: f.W + 2*Padding, H: f.H + 2*Padding}
		if candidate.Overlaps(padded) {
			t.Errorf("position %v overlaps card at %v", pos, c.Position)
		}
	}
	if pos.X != le.snap(pos.X) || pos.Y != le.snap(pos.Y) {
		t.Errorf("position %v is off the grid", pos)
	}
}

func TestArrangeGroup_NoOverlapsAndWraps(t *testing.T) {
	le := NewLayoutEngine()
	cs := make([]domain.Card, 8)
	group := make([]*domain.Card, len(cs))
	for i := range cs {
		cs[i] = textCard(float64(i)*7, 1000, 400, 200)
		group[i] = &cs[i]
	}
	le.ArrangeGroup(group, geometry.Vec{})

	for i := range cs {
		for j := i + 1; j < len(cs); j++ {
			if cards.Frame(cs[i]).Overlaps(cards.Frame(cs[j])) {
				t.Errorf("cards %d and %d overlap: %v and %v", i, j, cs[i].Position, cs[j].Position)
			}
		}
	}
	if cs[0].Position != (geometry.Vec{}) {
		t.Errorf("first card at %v, want origin", cs[0].Position)
	}
	if cs[len(cs)-1].Position.Y == 0 {
		t.Error("expected the group to wrap onto a second row")
	}
	for _, c := range cs {
		if cards.Frame(c).Right() > MaxRowW+GridSize {
			t.Errorf("card at %v exceeds the row width", c.Position)
		}
	}
}

func TestSnap(t *testing.T) {
	le := NewLayoutEngine()
	tests := []struct {
		input, want float64
	}{
		{0, 0},
		{15, 30},
		{29, 30},
		{30, 30},
		{45, 60},
		{100, 90},
	}
	for _, tt := range tests {
		if got := le.snap(tt.input); got != tt.want {
			t.Errorf("snap(%.0f) = %.0f, want %.0f", tt.input, got, tt.want)
		}
	}
}
