package viewmodel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/classiccarrry/classic-carrry-admin/internal/models"
)

// Search returns the items where any field group contains query,
// case-insensitively. The fields of a group are joined with a space, so a
// first/last name pair matches "Ali Khan". An empty query matches everything.
func Search(items []models.Resource, groups [][]string, query string) []models.Resource {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]models.Resource{}, items...)
	}
	out := []models.Resource{}
	for _, item := range items {
		if matches(item, groups, q) {
			out = append(out, item)
		}
	}
	return out
}

func matches(item models.Resource, groups [][]string, q string) bool {
	for _, group := range groups {
		parts := make([]string, 0, len(group))
		for _, field := range group {
			if s := text(item.Lookup(field)); s != "" {
				parts = append(parts, s)
			}
		}
		if strings.Contains(strings.ToLower(strings.Join(parts, " ")), q) {
			return true
		}
	}
	return false
}

func text(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
