package main

import (
	"github.com/invext/invext/cmd"
)

func main() {
	cmd.Execute()
}
