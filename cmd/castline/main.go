package main

import "github.com/castline/castline-go/internal/cli"

func main() {
	cli.Execute()
}
