package usecase

import (
	"context"
	"time"
)

// SetSyncSleep replaces the rate limit wait of the sync engine
func SetSyncSleep(uc *SyncUseCase, sleep func(ctx context.Context, d time.Duration) error) {
	uc.sleep = sleep
}

// SetDashboardNow fixes the clock used to resolve the current month
func SetDashboardNow(uc *DashboardUseCase, now func() time.Time) {
	uc.now = now
}

// SetTriageNow fixes the review timestamp
func SetTriageNow(uc *TriageUseCase, now func() time.Time) {
	uc.now = now
}

// AuthCacheLen counts cached tokens
func AuthCacheLen(uc *AuthUseCase) int {
	n := 0
	uc.cache.cache.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
