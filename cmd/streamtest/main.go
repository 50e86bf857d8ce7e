// Command streamtest replays event scripts through a virtual clock.
package main

import (
	"github.com/tebeka/atexit"

	"github.com/sarchlab/streamtest/cmd/streamtest/cmd"
)

func main() {
	cmd.Execute()
	atexit.Exit(0)
}
