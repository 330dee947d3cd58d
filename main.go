package main

import "github.com/fncall/cmd"

func main() {
	cmd.Execute()
}
