// Package view derives the presented device sequence from a store
// snapshot. Project is pure: it allocates its output and never touches
// the input slice, so identical inputs always produce equal output.
package view

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/kavia-common/netwatch/internal/model"
)

var collator = collate.New(language.Und)

// Project filters then stable-sorts devices. Filtering keeps a device
// iff each set filter field matches; an unset status only matches the
// "unknown" filter value, where the comparison runs against the
// normalized status. Sorting is ascending on the string form of the
// selected field, missing values ordering as empty strings; equal keys
// keep their filtered order.
func Project(devices []model.Device, f model.Filter, key model.SortKey) []model.Device {
	out := make([]model.Device, 0, len(devices))
	for _, d := range devices {
		if !matches(&d, f) {
			continue
		}
		out = append(out, d)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return collator.CompareString(out[i].FieldValue(key), out[j].FieldValue(key)) < 0
	})
	return out
}

func matches(d *model.Device, f model.Filter) bool {
	if f.Type != "" && d.Type != f.Type {
		return false
	}
	if f.Status != "" {
		if f.Status == model.StatusUnknown {
			return d.EffectiveStatus() == model.StatusUnknown
		}
		if d.Status != f.Status {
			return false
		}
	}
	return true
}
