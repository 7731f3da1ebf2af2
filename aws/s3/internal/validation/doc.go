// Package validation provides centralized input validation logic.
// This includes bucket name validation, object key validation, and the
// key-to-local-path mapping used when mirroring a prefix to disk.
//
// Every key coming back from a listing is checked before it is turned into a
// local path, so a hostile or malformed key can never write outside the
// mirror root.
package validation
