package ui

import (
	"github.com/pterm/pterm"
)

// DarkTheme switches to the light variants of each colour, which read
// better on dark terminal backgrounds.
var DarkTheme bool

// paint colours a with normal, or with light when DarkTheme is set.
func paint(normal, light pterm.Color, a any) string {
	if DarkTheme {
		return light.Sprint(a)
	}

	return normal.Sprint(a)
}

func Green(a any) string { return paint(pterm.FgGreen, pterm.FgLightGreen, a) }

func Cyan(a any) string { return paint(pterm.FgCyan, pterm.FgLightCyan, a) }

func Blue(a any) string { return paint(pterm.FgBlue, pterm.FgLightBlue, a) }

func Red(a any) string { return paint(pterm.FgRed, pterm.FgLightRed, a) }
