// Command livectl talks to a live model session from the terminal.
//
// Usage:
//
//	livectl [flags] <command> [args]
//
// Commands:
//
//	chat     - send one text turn and record the spoken reply
//	stream   - stream a WAV file as realtime audio and record the reply
//	tail     - follow the log entries of a console session through redis
//	presets  - print the session presets
package main

import (
	"fmt"
	"os"

	"github.com/eleven-am/live-console/cmd/livectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
