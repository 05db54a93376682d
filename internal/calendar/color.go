package calendar

// DefaultPalette is the fixed colour cycle used for grouping keys.
var DefaultPalette = []string{
	"#4F86F7",
	"#F76F4F",
	"#34B37A",
	"#B065E0",
	"#F2B233",
	"#1FB5C7",
	"#E0528A",
	"#7A8B99",
}

// AssignColors maps each id to palette[i % len(palette)], where i is the index
// of the id's first appearance in ids. The result depends only on the given
// list and is rebuilt on every call.
func AssignColors(ids []string, palette []string) map[string]string {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	colors := make(map[string]string, len(ids))
	for i, id := range ids {
		if _, seen := colors[id]; seen {
			continue
		}
		colors[id] = palette[i%len(palette)]
	}
	return colors
}
