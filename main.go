package main

import "github.com/mdworks/markpad/cmd"

func main() {
	cmd.Execute()
}
