/*
Package abacus is a small calculator service built around exact arithmetic.

It evaluates literal expressions ("1 + 1", "10 / 2") and single binary operations
(add, subtract, multiply, divide), keeps a history of every evaluation and exposes
the same core to a CLI, an HTTP API and an MCP tool server.

# Concept

The arithmetic itself lives in pkg/arith and never loses precision silently: integers
grow into big integers instead of overflowing, and exact division yields rationals.
The Calculator in this package adds input sanitization, history persistence through a
ports.HistoryStore, structured logging and lifecycle hooks for metrics.

# Usage

	calc := abacus.New()

	ctx := context.Background()
	e, err := calc.Evaluate(ctx, "10 / 2")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(e.Result) // 5

	history, _ := calc.History(ctx, 10)
	for _, h := range history {
		fmt.Println(h.Expression, "=", h.Result)
	}

Persistence is pluggable: pass WithStore with the memory, file or redis adapters
from pkg/adapters.
*/
package abacus
