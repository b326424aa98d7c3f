/*
Package observability provides lifecycle hooks for monitoring dyntext labels.

Metrics exports Prometheus counters for engine steps, renders and rotations.
LogHooks writes the same events to a structured logger. Chain fans one event
out to several hook sets, so both can be installed on the same label.
*/
package observability
