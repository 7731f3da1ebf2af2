package dataset

import "context"

// Confirmer decides whether a run, or a category within it, may proceed.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, question string) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, question string) (bool, error) {
	return f(ctx, question)
}

// AutoConfirm approves every question. It backs unattended runs.
var AutoConfirm Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) {
	return true, nil
})
