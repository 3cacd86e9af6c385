package domain

import "time"

// Table is a bookable resource
type Table struct {
	ID          int64
	Name        string
	Description string
	Capacity    int // 0 = unlimited
	CreatedAt   time.Time
}

// Fits returns true if the party fits the table capacity
func (t *Table) Fits(people int) bool {
	return t.Capacity == 0 || people <= t.Capacity
}
