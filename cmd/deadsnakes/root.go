package main

import (
	"github.com/spf13/cobra"

	"deadsnakes/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "deadsnakes",
	Short: "deadsnakes - Python 2 relic scanner",
	Long: `deadsnakes scans a repository for obsolete Python 2 idioms ("relics")
by parsing every .py file into a syntax tree and matching a fixed set of
structural patterns against the tree nodes. It is designed as a CI gate:
any finding fails the gate.`,
	Version:       version.Version,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("deadsnakes version {{.Version}}\n")
}
