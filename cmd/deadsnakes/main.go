package main

import (
	"fmt"
	"os"
)

// Exit codes: 0 no findings, 1 findings present (set by the scan
// command), 2 invocation or configuration error.
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}
