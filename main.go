package main

import "horror-tracker/cmd"

func main() {
	cmd.Execute()
}
