/*
Package runner implements the interactive loop of the abacus calculator.

It reads one expression per line, evaluates it and prints the result, so a
failing line never stops the session. Input is sanitized before it reaches
the calculator, and I/O goes through pluggable handlers.

# Key Components

  - REPL: the read-evaluate-print loop, with the :history, :clear and :quit commands.
  - IOHandler: decouples how lines are read and results written.
  - TextHandler: the standard implementation for interactive CLI usage.
  - JSONHandler: JSON-Lines for scripting and headless use.

# Usage

	repl := runner.NewREPL(calc,
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)

	if err := repl.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
