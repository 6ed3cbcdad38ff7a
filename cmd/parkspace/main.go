package main

import "github.com/nutcparking/parkspace/internal/cli"

func main() {
	cli.Execute()
}
