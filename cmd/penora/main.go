package main

import "penora-write/internal/cli"

func main() {
	cli.Execute()
}
