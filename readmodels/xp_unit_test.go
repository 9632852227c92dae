package readmodels_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/finlifeos/finlife-core-go/readmodels"
)

func Test_ComputeLevel_QuadraticProgression(t *testing.T) {
	tests := []struct {
		name         string
		totalXP      int
		wantLevel    int
		wantLevelXP  int
		wantXPToNext int
	}{
		{name: "fresh_account", totalXP: 0, wantLevel: 1, wantLevelXP: 0, wantXPToNext: 100},
		{name: "just_below_level_two", totalXP: 99, wantLevel: 1, wantLevelXP: 99, wantXPToNext: 100},
		{name: "exactly_level_two", totalXP: 100, wantLevel: 2, wantLevelXP: 0, wantXPToNext: 400},
		{name: "inside_level_two", totalXP: 150, wantLevel: 2, wantLevelXP: 50, wantXPToNext: 400},
		{name: "exactly_level_three", totalXP: 500, wantLevel: 3, wantLevelXP: 0, wantXPToNext: 900},
		{name: "deep_into_level_three", totalXP: 1399, wantLevel: 3, wantLevelXP: 899, wantXPToNext: 900},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			level, levelXP, toNext := readmodels.ComputeLevel(tc.totalXP)

			assert.Equal(t, tc.wantLevel, level)
			assert.Equal(t, tc.wantLevelXP, levelXP)
			assert.Equal(t, tc.wantXPToNext, toNext)
		})
	}
}

func Test_PreviewTaskXP_EarlyCompletionBonus(t *testing.T) {
	dueDate := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)

	dayBefore := time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 12, readmodels.PreviewTaskXP(&dueDate, dayBefore))

	onDueDate := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 10, readmodels.PreviewTaskXP(&dueDate, onDueDate))

	dayAfter := time.Date(2025, time.June, 11, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 10, readmodels.PreviewTaskXP(&dueDate, dayAfter))
}

func Test_PreviewTaskXP_NoDueDateMeansBaseAward(t *testing.T) {
	completedDay := time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 10, readmodels.PreviewTaskXP(nil, completedDay))
}
