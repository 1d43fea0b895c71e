package utils

import "context"

type ctxKey string

const serviceSubjectKey ctxKey = "service_subject"

// WithServiceSubject marks the request as coming from an authenticated
// store backend.
func WithServiceSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, serviceSubjectKey, subject)
}

func ServiceSubjectFrom(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(serviceSubjectKey).(string)
	return s, ok && s != ""
}
