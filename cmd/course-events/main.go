package main

import (
	"github.com/pfrederiksen/course-events/internal/cli"
)

func main() {
	cli.Execute()
}
