package main

import "github.com/01moynul/storefront-golang/cmd/storectl/commands"

func main() {
	commands.Execute()
}
