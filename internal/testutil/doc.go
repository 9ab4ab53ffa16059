// Package testutil contains helper builders used across tests to reduce
// boilerplate when constructing prompts, agents and run contexts. Not
// intended for production usage.
package testutil
