package main

import "github.com/tranvictor/feedme/cmd"

func main() {
	cmd.Execute()
}
