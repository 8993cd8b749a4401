package main

import (
	"github.com/madkingbot/officialgames/internal/cli"
)

func main() {
	cli.Execute()
}
