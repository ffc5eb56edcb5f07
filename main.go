package main

import "github.com/yyspencer/Fire2Scripts/internal/cli"

func main() {
	cli.Execute()
}
