package carrier

import "context"

// Carrier delivers a single message to a recipient. Implementations must be
// safe for concurrent use, one Dispatch service instance shares a single
// carrier across requests.
type Carrier interface {
	Send(ctx context.Context, phoneNumber, message string) error
}
