package srv

import "context"

type cleanupService struct {
	cleanup func() error
}

func (c *cleanupService) Start(context.Context) error { return nil }

func (c *cleanupService) Shutdown(context.Context) error {
	if c.cleanup != nil {
		return c.cleanup()
	}
	return nil
}

// NewCleanup wraps a close func (db handle, log flush) as a Service so it is
// released together with the rest during shutdown.
func NewCleanup(fn func() error) Service {
	return &cleanupService{cleanup: fn}
}
