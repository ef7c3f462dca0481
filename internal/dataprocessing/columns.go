package dataprocessing

import (
	"fmt"
	"strings"
)

// ColumnKeys names header cells the way configuration refers to them: the cell
// text, "Unnamed: <i>" for an empty cell at zero-based position i, and
// "<label>.<n>" for the n-th repeat of a label.
func ColumnKeys(header []string) []string {
	keys := make([]string, len(header))
	used := make(map[string]struct{}, len(header))
	repeats := make(map[string]int)

	for i, cell := range header {
		key := strings.TrimSpace(cell)
		if key == "" {
			key = fmt.Sprintf("Unnamed: %d", i)
		}

		if _, taken := used[key]; taken {
			base := key
			for {
				repeats[base]++
				key = fmt.Sprintf("%s.%d", base, repeats[base])
				if _, clash := used[key]; !clash {
					break
				}
			}
		}

		used[key] = struct{}{}
		keys[i] = key
	}
	return keys
}
