/*
Package domain contains the core records and callbacks of the abacus calculator.

It is kept free of I/O and persistence, following the same hexagonal split used
by the rest of the module: adapters under pkg/adapters translate these records to
storage and transport formats.

# Key Entities

  - Evaluation: one calculation, its canonical expression and its outcome.
  - EvaluationEvent: what observers receive after each calculation.
  - LifecycleHooks: optional callbacks for logging and metrics.
*/
package domain
