// Package main provides the RevokePatch CLI tool.
package main

import "github.com/ZacharyZcR/RevokePatch/internal/cli"

func main() {
	cli.Execute()
}
