package main

import "github.com/companion-cli/companion/cmd"

func main() {
	cmd.Execute()
}
