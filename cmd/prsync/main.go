package main

import "prsync/internal/cmd"

func main() {
	cmd.Execute()
}
