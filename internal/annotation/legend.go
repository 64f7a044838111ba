package annotation

// LegendKey identifies one legend row. Stamps share a row when they agree on
// symbol, color and number visibility.
type LegendKey struct {
	Kind     StampKind `json:"kind"`
	Color    string    `json:"color"`
	Numbered bool      `json:"numbered"`
}

// String returns the stable textual form of the key, used to address
// per-photo meaning overrides.
func (k LegendKey) String() string {
	suffix := "plain"
	if k.Numbered {
		suffix = "numbered"
	}
	return string(k.Kind) + "/" + k.Color + "/" + suffix
}

// LegendEntry is one row of a photo's stamp summary.
type LegendEntry struct {
	Key     LegendKey `json:"key"`
	Count   int       `json:"count"`
	Sample  Stamp     `json:"sample"`
	Meaning string    `json:"meaning,omitempty"`
}

// SummarizeStamps groups stamps into legend entries. Entries appear in the
// order their group first occurs in the stamp list, so the legend stays
// stable while the surveyor keeps stamping.
func SummarizeStamps(stamps []Stamp) []LegendEntry {
	var entries []LegendEntry
	index := make(map[LegendKey]int)
	for _, st := range stamps {
		key := LegendKey{Kind: st.Kind, Color: st.Color, Numbered: st.ShowNumber}
		if i, ok := index[key]; ok {
			entries[i].Count++
			continue
		}
		index[key] = len(entries)
		entries = append(entries, LegendEntry{Key: key, Count: 1, Sample: st})
	}
	return entries
}

// BuildLegend summarizes the set's stamps and attaches meaning texts looked
// up by the stable key form. Keys without a meaning keep an empty string.
func BuildLegend(s *Set, meanings map[string]string) []LegendEntry {
	entries := SummarizeStamps(s.Stamps)
	for i := range entries {
		entries[i].Meaning = meanings[entries[i].Key.String()]
	}
	return entries
}
