// Package main is the entry point for the ilcheck CLI.
package main

import "ilcheck/cmd"

func main() {
	cmd.Execute()
}
