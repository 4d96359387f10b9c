package gamification

import (
	"fmt"
	"time"
)

// FreezeLedger is the persisted count of streak freezes used in a month.
type FreezeLedger struct {
	// Month is formatted as 2006-01.
	Month string `json:"month"`
	Used  int    `json:"used"`
}

// FreezeResult is the outcome of spending a freeze token.
type FreezeResult struct {
	Success   bool   `json:"success"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message"`
}

func monthOf(now time.Time) string {
	return now.Format("2006-01")
}

// current returns the ledger for now's month, resetting it when the month changed.
func (l FreezeLedger) current(now time.Time) FreezeLedger {
	if l.Month != monthOf(now) {
		return FreezeLedger{Month: monthOf(now), Used: 0}
	}
	return l
}

// RemainingFreezeTokens returns the tokens left this month.
func (e *Engine) RemainingFreezeTokens(ledger FreezeLedger, now time.Time) int {
	return max(e.cfg.FreezeTokensPerMonth-ledger.current(now).Used, 0)
}

// UseStreakFreeze spends a token and returns the updated ledger. The ledger is unchanged, apart from a month
// rollover, when no tokens are left.
func (e *Engine) UseStreakFreeze(ledger FreezeLedger, now time.Time) (FreezeLedger, FreezeResult) {
	l := ledger.current(now)
	remaining := e.RemainingFreezeTokens(l, now)
	if remaining == 0 {
		return l, FreezeResult{
			Success:   false,
			Remaining: 0,
			Message:   "No streak freezes left this month.",
		}
	}
	l.Used++
	return l, FreezeResult{
		Success:   true,
		Remaining: remaining - 1,
		Message:   fmt.Sprintf("Streak frozen. %d freezes left this month.", remaining-1),
	}
}
