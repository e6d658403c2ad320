package main

import "github.com/naka-gawa/github-fork-report/cmd"

func main() {
	cmd.Execute()
}
