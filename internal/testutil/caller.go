package testutil

import (
	"context"

	"taskdesk/internal/service"
)

func withCaller(ctx context.Context, p service.Profile) context.Context {
	return context.WithValue(ctx, callerKey{}, p)
}

func callerFrom(ctx context.Context) service.Profile {
	p, _ := ctx.Value(callerKey{}).(service.Profile)
	return p
}
