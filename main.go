package main

import "github.com/Tiliavir/flex/cmd"

func main() {
	cmd.Execute()
}
