package ui

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// PrintTable renders data as a boxed table whose first row is the header.
// name identifies the table in the error printed when rendering fails.
func PrintTable(name string, data [][]string, w io.Writer) {
	table := pterm.DefaultTable.
		WithBoxed().
		WithHasHeader().
		WithData(data)

	str, err := table.Srender()
	if err != nil {
		pterm.Error.Printfln("Failed to output %s table: %s", name, err.Error())
		return
	}

	fmt.Fprintln(w, str)
}
