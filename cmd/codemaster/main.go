package main

import (
	"github.com/mcoot/codemaster-go/internal/cli"
)

func main() {
	cli.Execute()
}
