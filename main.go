package main

import "github.com/lzxtools/cmd"

func main() {
	cmd.Execute()
}
