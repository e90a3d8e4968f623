package main

import "wsup/internal/cli"

func main() {
	cli.Execute()
}
