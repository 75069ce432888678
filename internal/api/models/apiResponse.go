package models

import (
	"context"
	"encoding/json"
	"sync"
)

// ApiResponse carries the outcome of one engine operation back to whoever
// queued it. Wait, when set, is released once the operation finished.
type ApiResponse struct {
	Wait     *sync.WaitGroup
	Ctx      context.Context
	Result   bool
	Error    string
	Response json.RawMessage
}

// Done records the outcome and releases the waiter. Response is expected
// to be filled in by the operation itself.
func (r *ApiResponse) Done(err error) {
	if err != nil {
		r.Result = false
		r.Error = err.Error()
	} else {
		r.Result = true
	}
	if r.Wait != nil {
		r.Wait.Done()
	}
}
