package main

import "github.com/tablemate/tablemate/cmd"

func main() {
	cmd.Execute()
}
