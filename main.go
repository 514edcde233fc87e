package main

import "github.com/notargets/gofe/cmd"

func main() {
	cmd.Execute()
}
