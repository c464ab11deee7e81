package main

import "github.com/pilotdeck/pilotdeck/cmd"

func main() {
	cmd.Execute()
}
