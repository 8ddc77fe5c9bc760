// Package delivery defines the contract every transport front end satisfies.
package delivery

import "context"

// Delivery is a servable transport endpoint, started by the application
// lifecycle and stopped through its fx hooks.
type Delivery interface {
	Serve(ctx context.Context) error
}
