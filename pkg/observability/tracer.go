package observability

import "context"

type Tracer interface {
	Start(ctx context.Context, name string) (context.Context, Span)
}

type Span interface {
	End()
	RecordError(err error)
	// SetInt attaches an integer attribute, e.g. the size of a scrape.
	SetInt(key string, v int)
}
