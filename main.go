package main

import "github.com/velohq/velo/cmd"

func main() {
	cmd.Execute()
}
