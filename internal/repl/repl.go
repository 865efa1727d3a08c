package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leengari/hybrideval/internal/accel"
	"github.com/leengari/hybrideval/internal/evaluator"
	"github.com/leengari/hybrideval/internal/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	nullStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Start runs the interactive loop over one session.
func Start(session *evaluator.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("Welcome to hybrideval")
	fmt.Println("Type an aggregate expression, or 'help' for commands.")

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		if line == "exit" || line == "\\q" {
			break
		}

		if handleCommand(session, line) {
			continue
		}

		result, err := session.Evaluate(line)
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			continue
		}

		PrintResult(os.Stdout, result)
	}
}

// handleCommand processes non-expression commands; returns false when the
// line should be evaluated as an expression instead.
func handleCommand(session *evaluator.Session, line string) bool {
	fields := strings.Fields(line)

	switch fields[0] {
	case "help":
		fmt.Println("Commands:")
		fmt.Println("  columns            list table columns")
		fmt.Println("  handlers           list accelerated functions")
		fmt.Println("  group <col> ...    group the table by key columns")
		fmt.Println("  ungroup            drop the grouping")
		fmt.Println("  exit, \\q           quit")
		return true

	case "columns":
		for _, col := range session.Table().Columns() {
			fmt.Printf("  %s  %s\n", col.Name(), col.Kind())
		}
		return true

	case "handlers":
		for _, name := range accel.Default().Names() {
			fmt.Printf("  %s\n", name)
		}
		return true

	case "group":
		if len(fields) < 2 {
			fmt.Println(errorStyle.Render("usage: group <col> [<col> ...]"))
			return true
		}
		if err := session.GroupBy(fields[1:]...); err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			return true
		}
		fmt.Printf("Grouped into %d groups\n", session.Grouping().NumGroups())
		return true

	case "ungroup":
		session.Ungroup()
		fmt.Println("Ungrouped")
		return true
	}

	return false
}

// PrintResult renders a result set as an aligned grid.
func PrintResult(w io.Writer, res *evaluator.ResultSet) {
	if len(res.Columns) == 0 {
		fmt.Fprintln(w, res.Message)
		return
	}

	widths := make([]int, len(res.Columns))
	numRows := res.Columns[0].Len()

	cells := make([][]string, numRows)
	for i := range cells {
		cells[i] = make([]string, len(res.Columns))
	}

	for c, col := range res.Columns {
		widths[c] = len(col.Name())
		for r := 0; r < numRows; r++ {
			text := formatValue(col.Value(r))
			if len(text) > widths[c] {
				widths[c] = len(text)
			}
			cells[r][c] = text
		}
	}

	var header strings.Builder
	for c, col := range res.Columns {
		header.WriteString(pad(col.Name(), widths[c]))
		if c < len(res.Columns)-1 {
			header.WriteString("  ")
		}
	}
	fmt.Fprintln(w, headerStyle.Render(header.String()))

	for r := 0; r < numRows; r++ {
		var row strings.Builder
		for c := range res.Columns {
			text := cells[r][c]
			if text == "NULL" {
				text = nullStyle.Render(pad(text, widths[c]))
			} else {
				text = pad(text, widths[c])
			}
			row.WriteString(text)
			if c < len(res.Columns)-1 {
				row.WriteString("  ")
			}
		}
		fmt.Fprintln(w, row.String())
	}

	if res.Message != "" {
		fmt.Fprintln(w, res.Message)
	}
}

func formatValue(v interface{}) string {
	if v == nil {
		return "NULL"
	}
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%g", f)
	}
	return fmt.Sprintf("%v", v)
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// SampleTable builds the demo flights table used by the REPL binary.
func SampleTable() *table.Table {
	t, err := table.New("flights",
		table.FromStrings("carrier", []string{"AA", "AA", "UA", "UA", "UA", "DL", "DL", "AA"}, nil),
		table.FromStrings("origin", []string{"JFK", "LGA", "JFK", "JFK", "EWR", "LGA", "JFK", "JFK"}, nil),
		table.FromInts("flights", []int64{10, 20, 30, 5, 12, 8, 14, 3}, nil),
		table.FromFloats("delay", []float64{4.5, 12.0, 0.0, 31.5, 2.25, 9.75, 6.5, 18.0},
			[]bool{false, false, true, false, false, false, false, false}),
	)
	if err != nil {
		panic(err)
	}
	return t
}
