package formatting

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{
		options: options,
	}
}

// FormatData renders Tabular values as a table, maps as key/value rows and
// anything else as plain text.
func (f *TableFormatter) FormatData(data interface{}) error {
	switch d := data.(type) {
	case Tabular:
		return f.formatTabular(d)
	case map[string]interface{}:
		return f.formatObjectData(d)
	case []string:
		return f.formatList(d)
	case string:
		_, err := fmt.Fprintln(f.options.Writer, d)
		return err
	default:
		_, err := fmt.Fprintf(f.options.Writer, "%v\n", d)
		return err
	}
}

// SetOptions updates the formatter options
func (f *TableFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *TableFormatter) GetOptions() Options {
	return f.options
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.options.Writer)
	t.SetStyle(table.StyleRounded)
	return t
}

// formatEmptyMessage formats empty result messages
func (f *TableFormatter) formatEmptyMessage(icon, message string) error {
	_, err := fmt.Fprintf(f.options.Writer, "%s %s\n", text.FgYellow.Sprint(icon), text.FgYellow.Sprint(message))
	return err
}

func (f *TableFormatter) formatTabular(data Tabular) error {
	rows := data.Rows()
	if len(rows) == 0 {
		return f.formatEmptyMessage("📋", "No items found")
	}

	t := f.createTable()
	header := make(table.Row, 0, len(data.Headers()))
	for _, h := range data.Headers() {
		header = append(header, text.FgHiCyan.Sprint(h))
	}
	t.AppendHeader(header)

	for _, r := range rows {
		row := make(table.Row, 0, len(r))
		for _, cell := range r {
			row = append(row, colorStatus(cell))
		}
		t.AppendRow(row)
	}
	t.Render()

	if !f.options.Quiet {
		_, err := fmt.Fprintf(f.options.Writer, "\n%s %s\n",
			text.FgHiBlue.Sprint("Total:"),
			text.FgHiWhite.Sprint(len(rows)))
		return err
	}
	return nil
}

// formatObjectData formats object data as key-value pairs
func (f *TableFormatter) formatObjectData(data map[string]interface{}) error {
	t := f.createTable()
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("KEY"),
		text.FgHiCyan.Sprint("VALUE"),
	})

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		valueStr := fmt.Sprintf("%v", data[key])
		if len(valueStr) > 100 {
			valueStr = valueStr[:97] + "..."
		}
		t.AppendRow(table.Row{text.FgHiCyan.Sprint(key), valueStr})
	}

	t.Render()
	return nil
}

func (f *TableFormatter) formatList(items []string) error {
	if len(items) == 0 {
		return f.formatEmptyMessage("📋", "No items found")
	}
	for i, item := range items {
		if _, err := fmt.Fprintf(f.options.Writer, "  %d. %s\n", i+1, item); err != nil {
			return err
		}
	}
	return nil
}

// colorStatus highlights well-known status words.
func colorStatus(cell string) string {
	switch cell {
	case "changed", "Failed", "unreachable", "invalid":
		return text.FgRed.Sprint(cell)
	case "unchanged", "Succeeded", "monitoring", "reachable":
		return text.FgGreen.Sprint(cell)
	case "baseline", "Skipped", "skipped":
		return text.FgYellow.Sprint(cell)
	default:
		return cell
	}
}
