package formatting

import (
	"fmt"
	"sort"
	"strings"
)

// ConsoleFormatter provides simple console output formatting
type ConsoleFormatter struct {
	options Options
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter(options Options) Formatter {
	return &ConsoleFormatter{
		options: options,
	}
}

// FormatData writes one line per row or key.
func (f *ConsoleFormatter) FormatData(data interface{}) error {
	var lines []string
	switch d := data.(type) {
	case Tabular:
		rows := d.Rows()
		if len(rows) == 0 {
			lines = append(lines, "No items found.")
			break
		}
		for _, r := range rows {
			lines = append(lines, strings.Join(r, "  "))
		}
	case map[string]interface{}:
		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %v", k, d[k]))
		}
	case []string:
		lines = d
	case string:
		lines = []string{d}
	default:
		lines = []string{PrettyJSON(d)}
	}

	for _, l := range lines {
		if _, err := fmt.Fprintln(f.options.Writer, l); err != nil {
			return err
		}
	}
	return nil
}

// SetOptions updates the formatter options
func (f *ConsoleFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *ConsoleFormatter) GetOptions() Options {
	return f.options
}
