package cmd

import "github.com/fatih/color"

// Colour output mirrors cmd/ailang/main.go's function-table idiom: each
// severity or status gets its own SprintFunc instead of calling color.New at
// every print site.
var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)
