// Package clock keeps the game's minute counter and its scheduled timers.
package clock

import (
	"fmt"
	"sort"

	"github.com/nathoo/taleforge/types"
)

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
)

// Schedule queues actions to run once delay minutes have passed. A
// negative delay is treated as zero.
func Schedule(ts *types.TimeState, delay int, actions []types.Action) {
	if delay < 0 {
		delay = 0
	}
	ts.Timers = append(ts.Timers, types.Timer{
		TriggerTime: ts.TotalMinutes + delay,
		Actions:     actions,
	})
}

// Advance moves the clock forward and removes every timer that has come
// due. The returned actions are ordered by trigger time; timers due at the
// same minute keep their scheduling order.
func Advance(ts *types.TimeState, minutes int) []types.Action {
	if minutes > 0 {
		ts.TotalMinutes += minutes
	}

	var due, pending []types.Timer
	for _, t := range ts.Timers {
		if t.TriggerTime <= ts.TotalMinutes {
			due = append(due, t)
		} else {
			pending = append(pending, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	if pending == nil {
		pending = []types.Timer{}
	}
	ts.Timers = pending

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].TriggerTime < due[j].TriggerTime
	})
	var actions []types.Action
	for _, t := range due {
		actions = append(actions, t.Actions...)
	}
	return actions
}

// Format renders total minutes as "Day N, HH:MM". Minute 0 is day 1.
func Format(total int) string {
	if total < 0 {
		total = 0
	}
	day := total/minutesPerDay + 1
	rem := total % minutesPerDay
	return fmt.Sprintf("Day %d, %02d:%02d", day, rem/minutesPerHour, rem%minutesPerHour)
}

// String renders the current clock.
func String(ts *types.TimeState) string {
	return Format(ts.TotalMinutes)
}
