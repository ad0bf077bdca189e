// Package arith implements the arithmetic behind the add_task background job.
// Numbers keep the integer/float distinction of their JSON encoding: integers
// are arbitrary precision and add exactly, while any float operand produces a
// float result.
package arith
