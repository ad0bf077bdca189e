// Package task manages background job submission, queuing, processing, and
// lifecycle. It defines the Dispatcher contract used by the HTTP layer, the
// registry of named task functions executed by workers, and an in-process
// Runner that persists tasks in a Store, executes them on a worker pool and
// recovers unfinished work after a restart.
package task
