// Package mocks provides function-field mock implementations of the service
// and auth interfaces for handler and middleware tests.
//
// Each mock calls its XxxFn field when set and otherwise returns the default
// values stored on the struct:
//
//	svc := &mocks.MockTaskService{
//	    GetTaskFn: func(ctx context.Context, id string) (*domain.Task, error) {
//	        return nil, domain.NewTaskNotFoundError(id)
//	    },
//	}
package mocks
