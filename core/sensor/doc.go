// Package sensor defines the sensor node record collected by the service.
//
// A submission is a "head" node which may carry one mate node and an ordered list
// of child nodes. The relation tree is one level deep: mates and children are plain
// nodes and their own ConnectedNodes are not walked.
//
// # Identity
//
// Every node receives its UUID at construction. Callers read it through UUID()
// and can only replace it with RegenerateUUID(). Two strategies exist:
//   - New: a random (version 4) UUID.
//   - NewDerived: a name-based UUID computed from the sanitized node type, the
//     sanitized node name and a random suffix (see DeriveUUID).
//
// # Wire format
//
// Nodes encode to JSON using the field names of the mobile client:
//
//	{"uuid":"...","nodeName":"pump","nodeType":"head","connectedNodes":{"nodeMate":{...},"childrenNodes":[...]}}
package sensor
