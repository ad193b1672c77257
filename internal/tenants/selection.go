package tenants

import (
	"slices"
	"strings"
)

// SelectDefault picks the tenant to activate when none is committed:
// the remembered tenant if still accessible, then the first tenant whose
// name contains priorityMatch case-insensitively, then the first tenant.
// An empty set yields "".
func SelectDefault(accessible []string, remembered, priorityMatch string) string {
	if len(accessible) == 0 {
		return ""
	}
	if remembered != "" && slices.Contains(accessible, remembered) {
		return remembered
	}
	if needle := strings.ToLower(strings.TrimSpace(priorityMatch)); needle != "" {
		for _, t := range accessible {
			if strings.Contains(strings.ToLower(t), needle) {
				return t
			}
		}
	}
	return accessible[0]
}

// mergeSorted unions the inputs, drops blank names and sorts the result.
func mergeSorted(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, list := range lists {
		for _, name := range list {
			if strings.TrimSpace(name) == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}
