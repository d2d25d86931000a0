package main

import "github.com/jasperwreed/astroguide/internal/cli"

func main() {
	cli.Execute()
}
