/*
Package runner implements the interactive loop that drives a Parley engine from a
line-oriented stream such as a terminal.

Each line read is one turn. The runner keeps the session identifier returned by the
engine and sends it back on the next turn, so the conversation survives across lines
(and across a replaced identifier, when the store forgets a session).

# Key Components

  - Runner: reads, runs a turn, writes, until EOF, "exit"/"quit" or cancellation.
  - IOHandler: decouples how input arrives and replies are shown.
  - TextHandler: prompt-based terminal I/O with optional markdown rendering.
  - JSONHandler: JSON-Lines I/O for headless hosts.
  - Sanitizer: the input policy shared by every transport, with a configurable size limit.

# Usage

	r := runner.NewRunner(
		runner.WithEngine(eng),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
