// Package planner turns a remote listing into mirror operations.
// Every key is mapped to a path under the local root; keys that already
// exist locally are skipped and keys that cannot be mapped safely are rejected.
package planner
