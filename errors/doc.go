/*
Package errors provides semantic error types for topobind.

The package defines the failure classes of the binding layer with specific
types that can be checked using the standard errors.Is() function or the
provided helper functions.

Common Errors:

	var (
	    ErrNotFound        = errors.New("not found")
	    ErrAlreadyExists   = errors.New("already exists")
	    ErrInvalidInput    = errors.New("invalid input")
	    ErrUnsupportedType = errors.New("unsupported value type")
	    ErrNullEntity      = errors.New("null entity")
	    ErrKernelFailure   = errors.New("kernel failure")
	)

NotFound is recovered locally by factory dispatch (it falls back to the
default factory of the entity's kind) and never reaches callers of
ByCoreTopology. Every other class propagates to the caller unchanged.

Usage:

	t, err := session.SetDictionary(ctx, cell, map[string]any{"label": "A1"})
	if err != nil {
	    if errors.IsUnsupportedType(err) {
	        // a value could not be turned into an attribute
	    }
	    return err
	}

	// Kernel failures keep the native error text
	var kerr *errors.KernelError
	if stderrors.As(err, &kerr) {
	    log.Printf("%s: %v", kerr.Op, kerr.Err)
	}
*/
package errors
