package model

import "time"

// WeeksPerMonth is the number of payout weeks per month. Days 29-31 count toward the last week.
const WeeksPerMonth = 4

// WeekStatus is the state of one payout week for a store
type WeekStatus string

const (
	WeekValid   WeekStatus = "valid"
	WeekMissing WeekStatus = "missing"
)

// WeekOfMonth returns the payout week (1-4) for t
func WeekOfMonth(t time.Time) int {
	week := (t.Day()-1)/7 + 1
	if week > WeeksPerMonth {
		return WeeksPerMonth
	}
	return week
}

// PayoutRow is the payout of one store for one brand in one month
type PayoutRow struct {
	Store      *Store
	Weeks      [WeeksPerMonth]WeekStatus
	ValidWeeks int
	Earned     int64
	Max        int64
}

// PayoutReport is the payout table of one brand for one month
type PayoutReport struct {
	Brand *Brand
	// Month is the first day of the reported month
	Month time.Time
	Rows  []*PayoutRow
	Total int64
}
