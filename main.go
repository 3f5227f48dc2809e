package main

import "smatch/lexgraph/cmd"

func main() {
	cmd.Execute()
}
