// Package event provides the bind/propagate substrate shared by the engines.
//
// A component that emits events embeds Source. Observers subscribe with
// Bind(eventType, observerID, handler) and the component publishes with
// Propagate(eventType, data). Observers are identified by registry ID, so a
// binding can be removed symmetrically with Unbind(eventType, observerID)
// without holding a reference to the observer itself.
//
// Non-component sources (native listeners, platform callbacks) expose the
// narrower Listener interface instead; Emitter is a minimal implementation.
//
// Dispatch is synchronous and runs on the caller's goroutine. A handler that
// panics is recovered and logged, and dispatch continues with the remaining
// observers.
package event
