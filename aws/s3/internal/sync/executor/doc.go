// Package executor runs the download steps of a mirror plan.
// Operations are executed one at a time; a failed file is recorded and the
// remaining operations still run.
package executor
