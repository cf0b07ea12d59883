package main

import "github.com/nikdata/oura-hrv/cmd/ourahrv/commands"

func main() {
	commands.Execute()
}
