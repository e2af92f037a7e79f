// Package di provides a minimal dependency injection container used to wire
// bounded-context services without a global registry.
package di

import "sync"

// ServiceRegistry is the read side of the container, handed to factories and
// to code that resolves previously-registered services.
type ServiceRegistry interface {
	// Get returns the service registered or resolved under name, or nil if
	// nothing is registered under that name.
	Get(name string) any
}

// Container is the write side: register eager instances directly, or lazy
// factories via RegisterToken.
type Container interface {
	ServiceRegistry
	// Register stores an already-constructed instance under name.
	Register(name string, instance any)
}

// container is the default in-memory Container/ServiceRegistry.
type container struct {
	mu        sync.Mutex
	instances map[string]any
	factories map[string]func(ServiceRegistry) any
}

// NewContainer creates an empty container.
func NewContainer() *container {
	return &container{
		instances: make(map[string]any),
		factories: make(map[string]func(ServiceRegistry) any),
	}
}

func (c *container) Register(name string, instance any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instances[name] = instance
	delete(c.factories, name)
}

// Get resolves name, lazily invoking and memoizing its factory on first
// access. Returns nil if name was never registered.
func (c *container) Get(name string) any {
	c.mu.Lock()
	if v, ok := c.instances[name]; ok {
		c.mu.Unlock()
		return v
	}
	factory, ok := c.factories[name]
	c.mu.Unlock()
	if !ok {
		return nil
	}

	v := factory(c)

	c.mu.Lock()
	c.instances[name] = v
	delete(c.factories, name)
	c.mu.Unlock()
	return v
}

// registerFactory stores a lazily-resolved, memoized-on-first-Get factory.
// Unexported: callers use the generic RegisterToken wrapper below.
func (c *container) registerFactory(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[name] = factory
	delete(c.instances, name)
}

// factoryRegistrar is implemented by Container values that support lazy
// factory registration (the default container does; test doubles may not).
type factoryRegistrar interface {
	registerFactory(name string, factory func(ServiceRegistry) any)
}

// RegisterToken registers a typed, lazily-resolved singleton factory under
// token. Resolve it with Resolve[T](sr, token) from a generated per-context
// GetXxx accessor.
func RegisterToken[T any](c Container, token string, factory func(ServiceRegistry) T) {
	fr, ok := c.(factoryRegistrar)
	if !ok {
		// Fallback for Container implementations without lazy support:
		// resolve eagerly against the container itself.
		c.Register(token, factory(c))
		return
	}
	fr.registerFactory(token, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// Resolve fetches token from sr and type-asserts it to T. It panics if token
// was never registered or holds a value of the wrong type — both indicate a
// wiring bug in RegisterServices, not a runtime condition callers should
// recover from.
func Resolve[T any](sr ServiceRegistry, token string) T {
	v := sr.Get(token)
	typed, ok := v.(T)
	if !ok {
		panic("di: token " + token + " not registered or wrong type")
	}
	return typed
}
