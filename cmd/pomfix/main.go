package main

import "github.com/scottrw93/maven-plugins/internal/cli"

func main() {
	cli.Execute()
}
