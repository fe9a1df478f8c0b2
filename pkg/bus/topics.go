package bus

import "github.com/angelmondragon/caraccessories-storefront/pkg/types"

// Signal is the payload of topics that carry none.
type Signal struct{}

var (
	// SessionCleared fires after logout has cleared the session.
	SessionCleared = NewTopic[Signal]("session.cleared")
	// OrderCreated carries the completed order snapshot.
	OrderCreated = NewTopic[types.Order]("order.created")
	// OpenLogin and OpenRegister are presentation requests; the state
	// managers never subscribe to them.
	OpenLogin    = NewTopic[Signal]("ui.open_login")
	OpenRegister = NewTopic[Signal]("ui.open_register")
)
