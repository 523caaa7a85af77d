package writequeue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMovingAverage(t *testing.T) {
	t.Parallel()

	t.Run("zero without samples", func(t *testing.T) {
		t.Parallel()

		m := newMovingAverage(10)
		assert.Equal(t, time.Duration(0), m.Value())
	})

	t.Run("averages recorded samples", func(t *testing.T) {
		t.Parallel()

		m := newMovingAverage(10)
		m.Record(10 * time.Millisecond)
		m.Record(20 * time.Millisecond)
		m.Record(30 * time.Millisecond)
		assert.Equal(t, 20*time.Millisecond, m.Value())
	})

	t.Run("window is bounded", func(t *testing.T) {
		t.Parallel()

		m := newMovingAverage(3)
		m.Record(time.Hour) // pushed out once the window wraps
		m.Record(10 * time.Millisecond)
		m.Record(20 * time.Millisecond)
		m.Record(30 * time.Millisecond)
		assert.Equal(t, 20*time.Millisecond, m.Value())
	})

	t.Run("non-positive size falls back to default", func(t *testing.T) {
		t.Parallel()

		m := newMovingAverage(0)
		m.Record(5 * time.Millisecond)
		assert.Equal(t, 5*time.Millisecond, m.Value())
	})
}
