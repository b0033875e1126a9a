package main

import "github.com/mcoot/wordsession/internal/cli"

func main() {
	cli.Execute()
}
