package main

import "github.com/mcoot/minibeans/internal/cli"

func main() {
	cli.Execute()
}
