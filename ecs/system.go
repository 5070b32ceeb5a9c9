package ecs

// System represents a behavior that operates on entities with specific components.
// User-defined systems implement this interface and can include Query and Singleton
// fields, which the Scheduler initializes on registration, as well as custom state
// fields that persist between frames. Systems run one at a time in registration order.
type System interface {
	Execute(frame *UpdateFrame)
}
