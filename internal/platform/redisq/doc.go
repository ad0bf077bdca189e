// Package redisq implements the "redis" task backend on top of asynq.
//
// Redis plays two roles: it is the message broker the API server enqueues
// into, and the result backend that workers write results to and that
// lookups read from. Client is the submitting side (a task.Dispatcher) and
// Worker is the consuming side run by cmd/worker.
package redisq
