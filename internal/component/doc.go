// Package component provides Object, a reference component that takes
// part in all three engines.
//
// An Object is identified by its ID and found through the registry. It
// publishes events through its embedded event.Source, exposes properties
// to the dataflow graph it is linked into and reports writes made to it
// through its change hooks.
//
// LIFECYCLE:
//
//	obj := component.New("slider", component.WithConfig(map[string]any{
//	    "value": 0.5,
//	}))
//	obj.Init()    // registers, then applies the deferred configuration
//	defer obj.Destroy()
//
// Configure is the batch write entry point: it assigns every property with
// the object's graph paused, then propagates once from the object.
package component
