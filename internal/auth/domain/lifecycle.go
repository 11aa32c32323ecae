package domain

import "time"

// Lifecycle is the two-state record lifecycle: Active or Deleted at a point
// in time. It replaces a bare nullable timestamp so callers cannot forget
// which state they are looking at.
type Lifecycle struct {
	deletedAt *time.Time
}

// Active returns the lifecycle of a live record.
func Active() Lifecycle {
	return Lifecycle{}
}

// DeletedAt returns the lifecycle of a record soft-deleted at t.
func DeletedAt(t time.Time) Lifecycle {
	return Lifecycle{deletedAt: &t}
}

// Deleted reports whether the record is soft-deleted.
func (l Lifecycle) Deleted() bool { return l.deletedAt != nil }

// DeletedTime returns the soft-delete timestamp when Deleted.
func (l Lifecycle) DeletedTime() (time.Time, bool) {
	if l.deletedAt == nil {
		return time.Time{}, false
	}
	return *l.deletedAt, true
}
