package main

import "github.com/usefultools/curator/cmd"

func main() {
	cmd.Execute()
}
