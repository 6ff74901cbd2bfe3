package persona

import (
	"fmt"
	"strings"

	"github.com/simplcli/dobby/internal/memory"
)

// promptWithMemories prepends recalled long-term records to the user
// text so the model can use them without a second round-trip. With no
// records the text passes through unchanged.
func promptWithMemories(text string, records []memory.Record) string {
	if len(records) == 0 {
		return text
	}
	var sb strings.Builder
	sb.WriteString("Relevant memories from earlier sessions:\n")
	for _, r := range records {
		fmt.Fprintf(&sb, "- %s\n", r.Text)
	}
	sb.WriteString("\nCurrent message: ")
	sb.WriteString(text)
	return sb.String()
}

// truncate caps s at max runes, appending an ellipsis when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
