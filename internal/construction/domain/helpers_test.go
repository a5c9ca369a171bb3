package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	day1 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 = time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	day3 = time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newTestBuilding builds a building with one stage per entry of layout,
// each holding that many sub-stages with labor cost 100.
func newTestBuilding(t *testing.T, layout ...int) *Building {
	t.Helper()
	b, err := NewBuilding(uuid.New(), "Block A")
	require.NoError(t, err)
	for i, n := range layout {
		stage, err := b.AddStage("Stage " + string(rune('A'+i)))
		require.NoError(t, err)
		for j := 0; j < n; j++ {
			_, err := stage.AddSubstage("Step "+string(rune('1'+j)), dec("100"))
			require.NoError(t, err)
		}
	}
	return b
}

func sub(b *Building, stage, order int) *Substage {
	return b.stages[stage-1].SubstageAt(order)
}

// finish runs a sub-stage through start and finish.
func finish(t *testing.T, b *Building, s *Substage, today time.Time) {
	t.Helper()
	require.NoError(t, b.StartSubstage(s.ID(), today))
	require.NoError(t, b.FinishSubstage(s.ID(), today))
}
