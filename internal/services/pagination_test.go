package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvance(t *testing.T) {
	tests := []struct {
		name       string
		current    int
		totalPages int
		dir        Direction
		want       int
	}{
		{"next moves forward", 1, 5, DirectionNext, 2},
		{"next stays on the last page", 5, 5, DirectionNext, 5},
		{"prev moves back", 3, 5, DirectionPrev, 2},
		{"prev stays on the first page", 1, 5, DirectionPrev, 1},
		{"first jumps to page one", 4, 5, DirectionFirst, 1},
		{"last jumps to the end", 2, 5, DirectionLast, 5},
		{"single page pins everything", 1, 1, DirectionNext, 1},
		{"current past the end clamps", 9, 5, DirectionNext, 5},
		{"zero total pages is treated as one", 1, 0, DirectionLast, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Advance(tt.current, tt.totalPages, tt.dir))
		})
	}
}

func TestParseDirection(t *testing.T) {
	for _, valid := range []string{"next", "prev", "first", "last"} {
		dir, err := ParseDirection(valid)
		require.NoError(t, err)
		assert.Equal(t, Direction(valid), dir)
	}

	for _, invalid := range []string{"", "forward", "NEXT", "previous"} {
		_, err := ParseDirection(invalid)
		assert.Error(t, err, "direction %q should be rejected", invalid)
	}
}
