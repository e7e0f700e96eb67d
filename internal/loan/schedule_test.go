package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyPayment(t *testing.T) {
	// $10,000 at 5% over 12 months is the textbook $856.07
	payment, err := MonthlyPayment(1_000_000, 500, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(85_607), payment)
}

func TestMonthlyPayment_ZeroRate(t *testing.T) {
	payment, err := MonthlyPayment(1_200_00, 0, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(100_00), payment)
}

func TestMonthlyPayment_Invalid(t *testing.T) {
	_, err := MonthlyPayment(0, 500, 12)
	assert.Error(t, err)

	_, err = MonthlyPayment(100_00, 500, 0)
	assert.Error(t, err)

	_, err = MonthlyPayment(100_00, -1, 12)
	assert.Error(t, err)
}

func TestSchedule_PaysOffExactly(t *testing.T) {
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	schedule, err := Schedule(1_000_000, 500, 12, start)
	require.NoError(t, err)
	require.Len(t, schedule, 12)

	var totalPrincipal int64
	for _, inst := range schedule {
		totalPrincipal += inst.Principal
		assert.Equal(t, inst.Payment, inst.Principal+inst.Interest)
	}

	// Every cent of principal is repaid, no more, no less
	assert.Equal(t, int64(1_000_000), totalPrincipal)
	assert.Equal(t, int64(0), schedule[len(schedule)-1].Balance)

	// Due dates advance one month at a time from the start date
	assert.Equal(t, start.AddDate(0, 1, 0), schedule[0].DueDate)
	assert.Equal(t, start.AddDate(0, 12, 0), schedule[11].DueDate)
}

func TestSchedule_InterestDeclines(t *testing.T) {
	schedule, err := Schedule(5_000_000, 750, 24, time.Now())
	require.NoError(t, err)
	require.Len(t, schedule, 24)

	for i := 1; i < len(schedule); i++ {
		assert.LessOrEqual(t, schedule[i].Interest, schedule[i-1].Interest,
			"interest portion must not grow as the balance declines")
	}
}
