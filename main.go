package main

import "github.com/mpapenbr/iracelog-tirestrategy/cmd"

func main() {
	cmd.Execute()
}
