package backend

import "context"

type operatorKey struct{}

// WithOperator stores the acting dashboard user for the assertion header.
func WithOperator(ctx context.Context, userID uint64) context.Context {
	return context.WithValue(ctx, operatorKey{}, userID)
}

// OperatorFrom returns the operator set by WithOperator.
func OperatorFrom(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(operatorKey{}).(uint64)

	return id, ok && id != 0
}
