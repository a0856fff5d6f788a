// Package main is the entry point for the pyforce CLI.
package main

import "github.com/johnconna/pyforce-evaluation-v2/cmd"

func main() {
	cmd.Execute()
}
