// Package output renders talentctl results as colored text, aligned tables
// or JSON.
package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	json "github.com/json-iterator/go"
	"github.com/talentnet/backend/internal/cli/config"
)

// Format represents the output format type
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Writer is where every Print function writes
var Writer io.Writer = color.Output

// GetFormat returns the configured output format
func GetFormat() Format {
	if config.GetString("output.format") == string(FormatJSON) {
		return FormatJSON
	}
	return FormatText
}

// ValidateFormat checks if format is valid
func ValidateFormat(format string) bool {
	return format == string(FormatJSON) || format == string(FormatText)
}

// PrintSuccess prints a green message
func PrintSuccess(msg string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(Writer, "✓ "+msg+"\n", args...)
}

// PrintError prints a red message
func PrintError(msg string, args ...interface{}) {
	color.New(color.FgRed).Fprintf(Writer, "✗ "+msg+"\n", args...)
}

// PrintInfo prints a cyan message
func PrintInfo(msg string, args ...interface{}) {
	color.New(color.FgCyan).Fprintf(Writer, msg+"\n", args...)
}

// PrintWarning prints a yellow message
func PrintWarning(msg string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(Writer, "! "+msg+"\n", args...)
}

// PrintJSON writes data as indented JSON
func PrintJSON(data interface{}) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(Writer, string(out))
	return err
}

// PrintTable writes rows under bold headers. In JSON mode raw is printed
// instead so scripts get the full records.
func PrintTable(headers []string, rows [][]string, raw interface{}) error {
	if GetFormat() == FormatJSON {
		return PrintJSON(raw)
	}

	w := tabwriter.NewWriter(Writer, 0, 0, 2, ' ', 0)
	bold := color.New(color.Bold)
	for i, h := range headers {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		bold.Fprint(w, h)
	}
	fmt.Fprintln(w)
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprint(w, cell)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

// PrintRecord writes label/value pairs, or raw in JSON mode
func PrintRecord(title string, fields [][2]string, raw interface{}) error {
	if GetFormat() == FormatJSON {
		return PrintJSON(raw)
	}

	bold := color.New(color.Bold)
	if title != "" {
		bold.Fprintln(Writer, title)
	}
	w := tabwriter.NewWriter(Writer, 0, 0, 2, ' ', 0)
	for _, f := range fields {
		fmt.Fprintf(w, "  %s:\t%s\n", f[0], f[1])
	}
	return w.Flush()
}
