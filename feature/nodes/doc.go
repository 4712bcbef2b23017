// Package nodes is the submission feature: it accepts sensor nodes and their
// photos and hands them to the storage client as background operations.
//
// A node record and each of its images are written independently. Their tasks may
// finish in any order and one may fail while another succeeds; nothing is rolled
// back and nothing is retried.
//
// # HTTP Endpoints
//
//   - POST /nodes : JSON node. A missing uuid is generated. Returns 202 with the uuid.
//   - POST /nodes/:uuid/images?type=png : raw image body. Returns 202.
//
// Both endpoints accept ?wait=true to await the write: 201 on success, 502 when the
// storage operation failed.
package nodes
