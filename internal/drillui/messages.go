package drillui

import "time"

// startedMsg is sent once the runner has loaded the first problem.
type startedMsg struct {
	err error
}

// refreshMsg re-reads the runner state. The runner's own timer moves the
// clock; the screen only polls it.
type refreshMsg time.Time

// advancedMsg is sent when a manual advance has finished loading.
type advancedMsg struct {
	err error
}
