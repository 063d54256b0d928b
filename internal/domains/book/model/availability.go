package model

// Copy-counter transitions. Every mutation of AvailableCopies goes through
// these methods so the invariant 0 <= AvailableCopies <= TotalCopies and the
// available/borrowed status flip stay in one place. Callers run them inside
// the same transaction that persists the change.

// ApplyBorrowDelta hands one copy out.
// Fails when the title is not in a lendable state or no copy is left.
func (b *Book) ApplyBorrowDelta() error {
	if b.Status != StatusAvailable && b.Status != StatusBorrowed {
		return ErrBookUnavailable
	}
	// Decrementing past zero would break the counter invariant.
	if b.AvailableCopies <= 0 {
		return ErrCapacityViolation
	}

	b.AvailableCopies--
	b.TimesBorrowed++
	b.reconcileStatus()
	return nil
}

// ApplyReturnDelta takes one copy back.
// Fails when every copy is already on the shelf.
func (b *Book) ApplyReturnDelta() error {
	if b.AvailableCopies >= b.TotalCopies {
		return ErrCapacityViolation
	}

	b.AvailableCopies++
	b.reconcileStatus()
	return nil
}

// AdjustForCapacityChange re-bases the counters when a librarian changes
// the number of owned copies. The count of copies currently out on loan
// is preserved; available shifts by the same delta as total, clamped to
// the valid range.
func (b *Book) AdjustForCapacityChange(newTotal int) error {
	// A catalog title always owns at least one copy.
	if newTotal < 1 {
		return ErrCapacityViolation
	}

	delta := newTotal - b.TotalCopies
	b.TotalCopies = newTotal
	b.AvailableCopies += delta
	if b.AvailableCopies < 0 {
		b.AvailableCopies = 0
	}
	if b.AvailableCopies > b.TotalCopies {
		b.AvailableCopies = b.TotalCopies
	}

	b.reconcileStatus()
	return nil
}

// ChangeStatus moves the title into a librarian-managed state.
// Re-entering circulation with no copy on the shelf lands on borrowed,
// not available, so IsAvailable stays truthful.
func (b *Book) ChangeStatus(status Status) {
	b.Status = status
	if status == StatusAvailable && b.AvailableCopies == 0 {
		b.Status = StatusBorrowed
	}
}

// reconcileStatus flips between available and borrowed based on the
// counters. Manually managed states (reserved, maintenance, lost,
// damaged) are never overridden here.
func (b *Book) reconcileStatus() {
	switch b.Status {
	case StatusAvailable:
		if b.AvailableCopies == 0 {
			b.Status = StatusBorrowed
		}
	case StatusBorrowed:
		if b.AvailableCopies > 0 {
			b.Status = StatusAvailable
		}
	}
}
