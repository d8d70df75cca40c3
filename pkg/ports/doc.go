/*
Package ports defines the driven and driving ports (interfaces) of abacus.

These interfaces decouple the calculator core from external implementations, so the
same core can persist history in memory, on disk or in Redis, and be driven from the
CLI, HTTP or MCP adapters.

# Key Interfaces

  - HistoryStore: persists evaluations, newest first.
  - Calculator: what transport adapters need from the calculator core.
*/
package ports
