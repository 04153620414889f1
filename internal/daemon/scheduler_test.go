package daemon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/notionsync/internal/foundation/errors"
)

func TestScheduleSync(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{"twice a day", "0 0,12 * * *", false},
		{"every minute", "* * * * *", false},
		{"garbage", "every day", true},
		{"seconds field", "0 0 0,12 * * *", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScheduler()
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Stop() })

			err = s.ScheduleSync(tt.expr, func() {})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestSchedulerNextRun(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	_, ok := s.NextRun()
	assert.False(t, ok)

	require.NoError(t, s.ScheduleSync("0 0,12 * * *", func() {}))
	s.Start()
	var next time.Time
	require.Eventually(t, func() bool {
		next, ok = s.NextRun()
		return ok
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, next.After(time.Now()))
	assert.Contains(t, []int{0, 12}, next.Hour())

	require.NoError(t, s.Reschedule("30 6 * * *"))
	require.Eventually(t, func() bool {
		next, ok = s.NextRun()
		return ok && next.Hour() == 6 && next.Minute() == 30
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRescheduleWithoutJob(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })
	require.Error(t, s.Reschedule("* * * * *"))
}
