package main

import "github.com/deepakdgupta1/knowcode/cmd"

func main() {
	cmd.Execute()
}
