// Package scanner lists the remote side of a mirror.
package scanner
