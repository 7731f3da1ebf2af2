// Package sync implements mirroring of a remote prefix into a local directory.
//
// A mirror runs in three stages: the scanner lists every object under the
// prefix, the planner maps each key to a local path and decides whether to
// download, skip or reject it, and the executor performs the downloads one
// at a time. Existing local files are never overwritten.
package sync
