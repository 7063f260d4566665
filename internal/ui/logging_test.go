package ui

import (
	"os"

	"github.com/pterm/pterm"
)

func ExamplePrintfln() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()

	msg := "loop %s: u=%.2f"
	Printfln(msg, "oven", 1.5)
	// Output:
	// loop oven: u=1.50
}

func ExampleDebug() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()
	SetDebugEnabled(true)

	msg := "Rediscretized filter of loop %s (tx: %.1f)"
	Debug(msg, "oven", 2.0)
	// Output:
	// DEBUG: Rediscretized filter of loop oven (tx: 2.0)
}

func ExampleInfo() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()

	msg := "Starting control loop '%s'"
	Info(msg, "oven")
	// Output:
	// INFO: Starting control loop 'oven'
}

func ExampleWarning() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()

	msg := "Skipping sample: %d"
	Warning(msg, 5)
	// Output:
	// WARNING: Skipping sample: 5
}

func ExampleError() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()

	msg := "Unable to write output: %v"
	a := os.ErrClosed
	Error(msg, a)
	// Output:
	// ERROR: Unable to write output: file already closed
}
