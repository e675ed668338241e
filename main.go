package main

import "github.com/fakeyudi/cropguard/cmd"

func main() {
	cmd.Execute()
}
