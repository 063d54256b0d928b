package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateRatings(t *testing.T) {
	t.Run("mixed scores", func(t *testing.T) {
		avg, count := AggregateRatings([]int{5, 3, 4})
		assert.Equal(t, "4.00", avg.StringFixed(2))
		assert.Equal(t, 3, count)
	})

	t.Run("dropping a score shifts the average", func(t *testing.T) {
		avg, count := AggregateRatings([]int{5, 4})
		assert.Equal(t, "4.50", avg.StringFixed(2))
		assert.Equal(t, 2, count)
	})

	t.Run("no ratings means zero, not null", func(t *testing.T) {
		avg, count := AggregateRatings(nil)
		assert.Equal(t, "0.00", avg.StringFixed(2))
		assert.Equal(t, 0, count)
	})

	t.Run("repeating decimal rounds to 2dp", func(t *testing.T) {
		avg, count := AggregateRatings([]int{5, 5, 4})
		assert.Equal(t, "4.67", avg.StringFixed(2))
		assert.Equal(t, 3, count)
	})

	t.Run("single score", func(t *testing.T) {
		avg, count := AggregateRatings([]int{2})
		assert.Equal(t, "2.00", avg.StringFixed(2))
		assert.Equal(t, 1, count)
	})
}
