package orders

import (
	"strings"

	"bakeryapi/apperr"
)

// Tab is one of the four OrderCenter views.
type Tab string

const (
	TabPending    Tab = "pending"
	TabProcessing Tab = "processing"
	TabCompleted  Tab = "completed"
	TabCancelled  Tab = "cancelled"
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabPending, TabProcessing, TabCompleted, TabCancelled}

// Status is the single status shown under the tab.
func (t Tab) Status() Status { return Status(t) }

// ParseTab parses a tab name. The empty string means "no filter" and yields
// ok == false with a nil error.
func ParseTab(s string) (tab Tab, ok bool, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return "", false, nil
	}
	for _, t := range Tabs {
		if string(t) == s {
			return t, true, nil
		}
	}
	return "", false, apperr.E(apperr.Invalid, "unknown order tab")
}

// Filter keeps the items whose status matches the tab, preserving order.
func Filter[T any](items []T, tab Tab, status func(T) Status) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if status(it) == tab.Status() {
			out = append(out, it)
		}
	}
	return out
}

// Partition splits items across all tabs. Every item with a known status
// lands in exactly one tab.
func Partition[T any](items []T, status func(T) Status) map[Tab][]T {
	out := make(map[Tab][]T, len(Tabs))
	for _, t := range Tabs {
		out[t] = []T{}
	}
	for _, it := range items {
		t := Tab(status(it))
		if _, ok := out[t]; ok {
			out[t] = append(out[t], it)
		}
	}
	return out
}

// Counts returns the number of items per tab.
func Counts[T any](items []T, status func(T) Status) map[Tab]int {
	counts := make(map[Tab]int, len(Tabs))
	for t, list := range Partition(items, status) {
		counts[t] = len(list)
	}
	return counts
}
