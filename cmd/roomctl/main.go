package main

import "roomly/internal/roomctl/cli"

func main() {
	cli.Execute()
}
