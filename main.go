package main

import (
	"cuefm/cmd"
)

func main() {
	cmd.Execute()
}
