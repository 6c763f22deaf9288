// Package viewmodel derives the admin dashboard from a visitor listing.
// Every function is pure: the same listing, query and filter always produce
// the same result, and the input slice is never modified.
package viewmodel

import (
	"gatepass/pkg/model"
	"strings"
)

type StatusFilter string

const (
	FilterAll        StatusFilter = "all"
	FilterCheckedIn  StatusFilter = StatusFilter(model.StatusCheckedIn)
	FilterCheckedOut StatusFilter = StatusFilter(model.StatusCheckedOut)
)

type Stats struct {
	TotalVisitors int `json:"totalVisitors"`
	CheckedIn     int `json:"checkedIn"`
	CheckedOut    int `json:"checkedOut"`
}

type Dashboard struct {
	Stats            Stats                `json:"stats"`
	FilteredVisitors []model.VisitorGroup `json:"filteredVisitors"`
}

// ParseStatusFilter maps a raw query value to a filter. Unknown values fall
// back to FilterAll; ok is false in that case so callers can reject them.
func ParseStatusFilter(raw string) (StatusFilter, bool) {
	switch StatusFilter(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FilterAll:
		return FilterAll, true
	case FilterCheckedIn:
		return FilterCheckedIn, true
	case FilterCheckedOut:
		return FilterCheckedOut, true
	default:
		return FilterAll, false
	}
}

func ComputeStats(groups []model.VisitorGroup) Stats {
	stats := Stats{TotalVisitors: len(groups)}
	for i := range groups {
		if groups[i].CheckedOut() {
			stats.CheckedOut++
		} else {
			stats.CheckedIn++
		}
	}
	return stats
}

// Filter keeps groups whose primary visitor name, reason or group id contains
// query (case-insensitive, matched as typed) and whose status matches status.
// Order is kept.
func Filter(groups []model.VisitorGroup, query string, status StatusFilter) []model.VisitorGroup {
	needle := strings.ToLower(query)

	filtered := make([]model.VisitorGroup, 0, len(groups))
	for _, g := range groups {
		if !matchesStatus(&g, status) || !matchesQuery(&g, needle) {
			continue
		}
		filtered = append(filtered, g)
	}
	return filtered
}

func Derive(groups []model.VisitorGroup, query string, status StatusFilter) Dashboard {
	return Dashboard{
		Stats:            ComputeStats(groups),
		FilteredVisitors: Filter(groups, query, status),
	}
}

func matchesStatus(g *model.VisitorGroup, status StatusFilter) bool {
	switch status {
	case FilterCheckedIn:
		return !g.CheckedOut()
	case FilterCheckedOut:
		return g.CheckedOut()
	default:
		return true
	}
}

func matchesQuery(g *model.VisitorGroup, needle string) bool {
	if needle == "" {
		return true
	}
	for _, field := range []string{g.PrimaryVisitor.VisitorName, g.PrimaryVisitor.Reason, g.GroupID} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
