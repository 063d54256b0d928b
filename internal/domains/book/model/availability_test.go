package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCirculatingBook(total, available int) *Book {
	b := &Book{TotalCopies: total, AvailableCopies: available, Status: StatusAvailable}
	if available == 0 {
		b.Status = StatusBorrowed
	}
	return b
}

func TestApplyBorrowDelta(t *testing.T) {
	t.Run("decrements the counter", func(t *testing.T) {
		b := newCirculatingBook(3, 2)
		require.NoError(t, b.ApplyBorrowDelta())
		assert.Equal(t, 1, b.AvailableCopies)
		assert.Equal(t, StatusAvailable, b.Status)
	})

	t.Run("counts each successful borrow exactly once", func(t *testing.T) {
		b := newCirculatingBook(3, 2)
		require.NoError(t, b.ApplyBorrowDelta())
		assert.Equal(t, 1, b.TimesBorrowed)

		require.NoError(t, b.ApplyBorrowDelta())
		assert.Equal(t, 2, b.TimesBorrowed)

		// Failed borrows leave the counter alone
		require.Error(t, b.ApplyBorrowDelta())
		assert.Equal(t, 2, b.TimesBorrowed)
	})

	t.Run("last copy flips status to borrowed", func(t *testing.T) {
		b := newCirculatingBook(3, 1)
		require.NoError(t, b.ApplyBorrowDelta())
		assert.Equal(t, 0, b.AvailableCopies)
		assert.Equal(t, StatusBorrowed, b.Status)
	})

	t.Run("no copy left", func(t *testing.T) {
		b := newCirculatingBook(3, 0)
		err := b.ApplyBorrowDelta()
		assert.ErrorIs(t, err, ErrCapacityViolation)
		assert.Equal(t, 0, b.AvailableCopies)
		assert.Equal(t, 0, b.TimesBorrowed)
	})

	t.Run("non-lendable states refuse borrows", func(t *testing.T) {
		for _, status := range []Status{StatusMaintenance, StatusLost, StatusDamaged, StatusReserved} {
			b := &Book{TotalCopies: 3, AvailableCopies: 3, Status: status}
			assert.ErrorIs(t, b.ApplyBorrowDelta(), ErrBookUnavailable, string(status))
			assert.Equal(t, 0, b.TimesBorrowed, string(status))
		}
	})
}

func TestApplyReturnDelta(t *testing.T) {
	t.Run("increments the counter", func(t *testing.T) {
		b := newCirculatingBook(3, 1)
		require.NoError(t, b.ApplyReturnDelta())
		assert.Equal(t, 2, b.AvailableCopies)
	})

	t.Run("first return flips status back to available", func(t *testing.T) {
		b := newCirculatingBook(3, 0)
		require.NoError(t, b.ApplyReturnDelta())
		assert.Equal(t, 1, b.AvailableCopies)
		assert.Equal(t, StatusAvailable, b.Status)
	})

	t.Run("does not touch the borrow count", func(t *testing.T) {
		b := newCirculatingBook(3, 2)
		require.NoError(t, b.ApplyBorrowDelta())
		require.NoError(t, b.ApplyReturnDelta())
		assert.Equal(t, 1, b.TimesBorrowed)
	})

	t.Run("cannot exceed total copies", func(t *testing.T) {
		b := newCirculatingBook(3, 3)
		assert.ErrorIs(t, b.ApplyReturnDelta(), ErrCapacityViolation)
		assert.Equal(t, 3, b.AvailableCopies)
	})

	t.Run("maintenance state keeps its status on return", func(t *testing.T) {
		b := &Book{TotalCopies: 3, AvailableCopies: 1, Status: StatusMaintenance}
		require.NoError(t, b.ApplyReturnDelta())
		assert.Equal(t, StatusMaintenance, b.Status)
	})
}

func TestAdjustForCapacityChange(t *testing.T) {
	t.Run("shrink with all copies on the shelf", func(t *testing.T) {
		b := newCirculatingBook(5, 5)
		require.NoError(t, b.AdjustForCapacityChange(3))
		assert.Equal(t, 3, b.TotalCopies)
		assert.Equal(t, 3, b.AvailableCopies)
	})

	t.Run("grow preserves the number of copies on loan", func(t *testing.T) {
		b := newCirculatingBook(5, 2) // 3 copies out
		require.NoError(t, b.AdjustForCapacityChange(10))
		assert.Equal(t, 10, b.TotalCopies)
		assert.Equal(t, 7, b.AvailableCopies)
	})

	t.Run("shrink below the loaned count clamps to zero", func(t *testing.T) {
		b := newCirculatingBook(5, 1) // 4 copies out
		require.NoError(t, b.AdjustForCapacityChange(2))
		assert.Equal(t, 2, b.TotalCopies)
		assert.Equal(t, 0, b.AvailableCopies)
		assert.Equal(t, StatusBorrowed, b.Status)
	})

	t.Run("grow from zero availability restores circulation", func(t *testing.T) {
		b := newCirculatingBook(2, 0)
		require.NoError(t, b.AdjustForCapacityChange(4))
		assert.Equal(t, 2, b.AvailableCopies)
		assert.Equal(t, StatusAvailable, b.Status)
	})

	t.Run("zero total rejected", func(t *testing.T) {
		b := newCirculatingBook(2, 2)
		assert.ErrorIs(t, b.AdjustForCapacityChange(0), ErrCapacityViolation)
		assert.Equal(t, 2, b.TotalCopies)
	})

	t.Run("negative total rejected", func(t *testing.T) {
		b := newCirculatingBook(2, 2)
		assert.ErrorIs(t, b.AdjustForCapacityChange(-1), ErrCapacityViolation)
	})
}

func TestChangeStatus(t *testing.T) {
	t.Run("moves into a managed state", func(t *testing.T) {
		b := newCirculatingBook(3, 3)
		b.ChangeStatus(StatusMaintenance)
		assert.Equal(t, StatusMaintenance, b.Status)
	})

	t.Run("re-entering circulation with no copy lands on borrowed", func(t *testing.T) {
		b := &Book{TotalCopies: 2, AvailableCopies: 0, Status: StatusMaintenance}
		b.ChangeStatus(StatusAvailable)
		assert.Equal(t, StatusBorrowed, b.Status)
		assert.False(t, b.IsAvailable())
	})

	t.Run("re-entering circulation with copies on the shelf", func(t *testing.T) {
		b := &Book{TotalCopies: 2, AvailableCopies: 1, Status: StatusMaintenance}
		b.ChangeStatus(StatusAvailable)
		assert.Equal(t, StatusAvailable, b.Status)
		assert.True(t, b.IsAvailable())
	})
}
