/*
Package errors provides semantic error types for the columnstore library.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrNotFound        = errors.New("not found")
	    ErrInvalidArgument = errors.New("invalid argument")
	    ErrStoreExecution  = errors.New("store execution failed")
	    ErrNoIndexMap      = errors.New("no index map found for table")
	    ErrClosed          = errors.New("closed")
	)

Usage:

	_, err := manager.SaveWithTTL(ctx, user, -time.Second)
	if errors.IsInvalidArgument(err) {
	    // rejected before the store was contacted
	}

	_, err = manager.Find(ctx, query)
	if errors.IsStoreExecution(err) {
	    // the session reported a failure; the cause is available through errors.Unwrap
	}

Invalid argument errors are never retried. Store execution errors are not retried
by the manager either; retry policy belongs to the session.
*/
package errors
