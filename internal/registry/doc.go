// Package registry provides the process-wide arena that maps component IDs
// to live component instances.
//
// Engines never hold pointers to their peers. They store IDs and resolve
// them here at the moment they need the component, so a component can be
// torn down and rebuilt under the same ID without breaking the bindings,
// edges or task graphs that reference it.
//
// The registry is append/overwrite-only keyed by ID. Every overwrite bumps
// the entry generation so callers can detect that an ID now refers to a
// rebuilt instance.
package registry
