// Package components defines the plain data shared by the battle systems.
package components

import "math"

// Team identifies one of the two opposing sides.
type Team uint8

const (
	TeamBlue Team = iota
	TeamRed
)

// Teams lists both sides in update order.
var Teams = [2]Team{TeamBlue, TeamRed}

func (t Team) String() string {
	switch t {
	case TeamBlue:
		return "blue"
	case TeamRed:
		return "red"
	default:
		return "unknown"
	}
}

// Opponent returns the opposing team.
func (t Team) Opponent() Team {
	if t == TeamBlue {
		return TeamRed
	}
	return TeamBlue
}

// Archetype identifies an agent class with a distinct behavior profile.
type Archetype uint8

const (
	ArchetypeMelee Archetype = iota
	ArchetypeRanged
	ArchetypeTank
	NumArchetypes
)

// Archetypes lists every archetype in declaration order.
var Archetypes = [NumArchetypes]Archetype{ArchetypeMelee, ArchetypeRanged, ArchetypeTank}

func (a Archetype) String() string {
	switch a {
	case ArchetypeMelee:
		return "melee"
	case ArchetypeRanged:
		return "ranged"
	case ArchetypeTank:
		return "tank"
	default:
		return "unknown"
	}
}

// Position represents a world position or a 2D vector.
type Position struct {
	X, Y float64
}

// Add returns p + q.
func (p Position) Add(q Position) Position {
	return Position{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Position) Sub(q Position) Position {
	return Position{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p * s.
func (p Position) Scale(s float64) Position {
	return Position{X: p.X * s, Y: p.Y * s}
}

// Len returns the vector length.
func (p Position) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Dist returns the Euclidean distance between p and q.
func (p Position) Dist(q Position) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Normalize returns the unit vector of p.
// ok is false for a zero-length (or non-finite) vector, in which case the zero vector is returned.
func (p Position) Normalize() (unit Position, ok bool) {
	l := p.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return Position{}, false
	}
	return Position{X: p.X / l, Y: p.Y / l}, true
}

// Rotate returns p rotated by angle radians.
func (p Position) Rotate(angle float64) Position {
	sin, cos := math.Sincos(angle)
	return Position{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos}
}

// Bounds is the playable map rectangle [0,Width] x [0,Height].
type Bounds struct {
	Width, Height float64
}

// Contains reports whether p lies inside the map.
func (b Bounds) Contains(p Position) bool {
	return p.X >= 0 && p.X <= b.Width && p.Y >= 0 && p.Y <= b.Height
}

// Clamp keeps a circle of the given radius fully inside the map.
func (b Bounds) Clamp(p Position, radius float64) Position {
	return Position{
		X: clamp(p.X, radius, b.Width-radius),
		Y: clamp(p.Y, radius, b.Height-radius),
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return (lo + hi) / 2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
