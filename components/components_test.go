package components

import (
	"math"
	"testing"
)

func TestNormalizeZeroVector(t *testing.T) {
	unit, ok := Position{}.Normalize()
	if ok {
		t.Error("zero vector should not normalize")
	}
	if math.IsNaN(unit.X) || math.IsNaN(unit.Y) {
		t.Errorf("zero vector normalized to NaN: %v", unit)
	}

	unit, ok = Position{X: 3, Y: 4}.Normalize()
	if !ok {
		t.Fatal("expected (3,4) to normalize")
	}
	if math.Abs(unit.Len()-1) > 1e-12 {
		t.Errorf("unit length = %v, want 1", unit.Len())
	}
}

func TestBoundsClamp(t *testing.T) {
	b := Bounds{Width: 100, Height: 50}

	got := b.Clamp(Position{X: -10, Y: 60}, 5)
	if got.X != 5 || got.Y != 45 {
		t.Errorf("Clamp = %v, want (5, 45)", got)
	}
	if !b.Contains(Position{X: 100, Y: 0}) {
		t.Error("edge point should be inside bounds")
	}
	if b.Contains(Position{X: 100.1, Y: 0}) {
		t.Error("point beyond width should be outside bounds")
	}
}

func TestTeamOpponent(t *testing.T) {
	if TeamBlue.Opponent() != TeamRed || TeamRed.Opponent() != TeamBlue {
		t.Error("Opponent should swap teams")
	}
}
