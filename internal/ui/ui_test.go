package ui

import (
	"bytes"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
)

func TestPrintTable(t *testing.T) {
	pterm.DisableStyling()
	t.Cleanup(pterm.EnableStyling)

	var buf bytes.Buffer

	PrintTable("rules", [][]string{
		{"#", "NAME"},
		{"1", "cad"},
	}, &buf)

	out := buf.String()

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "cad")
}

func TestPaint(t *testing.T) {
	pterm.DisableColor()
	t.Cleanup(pterm.EnableColor)

	DarkTheme = true
	t.Cleanup(func() { DarkTheme = false })

	assert.Contains(t, Green("yes"), "yes")
	assert.Contains(t, Red(3), "3")
	assert.Contains(t, Cyan("ongoing"), "ongoing")
}
