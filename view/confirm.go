package view

import (
	"context"

	"github.com/dokumatek/erpkit/mutation"
)

// Confirm asks the user to approve a destructive action. Implementations
// must not block the event loop; a dialog that resolves a callback or a
// test stub returning a canned answer both fit.
type Confirm func(ctx context.Context, prompt string) bool

// ConfirmedDelete runs the confirm-before-destroy contract: the mutation is
// invoked only after the user approves. It reports whether the deletion was
// attempted; a declined prompt returns (false, nil) and touches nothing.
func ConfirmedDelete[I, R any](ctx context.Context, confirm Confirm, prompt string, m *mutation.Mutation[I, R], input I) (bool, error) {
	if confirm == nil || !confirm(ctx, prompt) {
		return false, nil
	}
	_, err := m.Mutate(ctx, input)
	return true, err
}
