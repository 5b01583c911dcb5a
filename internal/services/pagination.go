package services

import "fmt"

// Direction is a page navigation command
type Direction string

const (
	DirectionNext  Direction = "next"
	DirectionPrev  Direction = "prev"
	DirectionFirst Direction = "first"
	DirectionLast  Direction = "last"
)

// ParseDirection validates a navigation command string
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionNext, DirectionPrev, DirectionFirst, DirectionLast:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("unknown navigation direction %q", s)
	}
}

// Advance computes the page reached by applying dir from current.
// The result is always clamped to [1, totalPages]; moving past either
// edge stays on that edge.
func Advance(current, totalPages int, dir Direction) int {
	if totalPages < 1 {
		totalPages = 1
	}

	var target int
	switch dir {
	case DirectionNext:
		target = current + 1
	case DirectionPrev:
		target = current - 1
	case DirectionFirst:
		target = 1
	case DirectionLast:
		target = totalPages
	default:
		target = current
	}

	if target < 1 {
		return 1
	}
	if target > totalPages {
		return totalPages
	}
	return target
}
