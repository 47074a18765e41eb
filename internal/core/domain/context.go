package domain

import "context"

type labelKey struct{}

// WithLabel attaches the caller's audit label to a request context so that
// backends storing the text can record it.
func WithLabel(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, labelKey{}, label)
}

// LabelFrom returns the audit label of a request context, or "".
func LabelFrom(ctx context.Context) string {
	label, _ := ctx.Value(labelKey{}).(string)
	return label
}
