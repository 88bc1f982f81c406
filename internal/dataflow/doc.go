// Package dataflow keeps dependent component properties synchronized.
//
// A Graph is an ordered list of component IDs (the propagation order) plus,
// per source ID, an ordered list of edges. Each edge names a target
// component and the connectors copying a source property onto a target
// property.
//
// PROPAGATION:
//
// Propagate(id) pushes the values of id along its edges, then walks the
// nodes that follow it in order, pushing the values of each. A node whose
// properties were written since its last visit first runs its
// PropertiesDidChange hook. Propagate("") walks every node from the start. A node is never
// visited twice in a pass and a pass never starts while another one runs:
// a property write performed by a hook is picked up by the walk itself.
//
// PausePropagation and RestartPropagation bracket batches of writes. They
// nest; while any pause is outstanding Propagate only records that a pass
// is owed, and a pass from the start runs once the last pause is released.
//
// BUILDING:
//
// Graphs declared by templates are built in two phases. The reference
// phase registers symbolic node names and edges keyed by those names; Link
// binds each name to the ID of a concrete instance; Build resolves what it
// can. References that are not linked are skipped. Several instances of one
// template each get their own Graph built from the same reference data.
//
// PROPERTIES:
//
// A component exposes properties by implementing PropertyBindable. Any
// other struct component exposes its exported fields: the property
// "fontSize" maps to the field tagged `kinetic:"fontSize"`, or else to the
// field FontSize. A connector whose property cannot be resolved on either
// side is skipped.
//
// Graphs are not safe for concurrent use. Drive them from one goroutine,
// typically a runloop.Loop.
package dataflow
