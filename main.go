package main

import "github.com/chrisjb82/powerSAS/cmd"

func main() {
	cmd.Execute()
}
