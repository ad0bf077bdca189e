// Package api handles incoming HTTP requests, request validation and
// response formatting. It translates HTTP concerns into task submissions and
// lookups on a task.Dispatcher.
package api
