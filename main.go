package main

import "github.com/agentic-research/gatetree/cmd"

func main() {
	cmd.Execute()
}
