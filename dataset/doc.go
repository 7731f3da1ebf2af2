// Package dataset downloads MOAD capture objects from object storage.
//
// A run walks the selected catalog objects in order. For each object it
// checks that the object exists remotely, discovers its pose-* folders and
// then fetches every enabled category:
//
//	<target>/<object>/<pose>/<DSLR>/          rgb captures
//	<target>/<object>/<pose>/<reconstruction>/ pose reconstruction export
//	<target>/<object>/<pose>/<realsense>/      depth sensor captures
//	<target>/<object>/cad/                     CAD source
//	<target>/<object>/fused/                   raw cloud and raw mesh
//	<target>/<object>/fused/{obj,usd,blend}/   fused model exports
//
// Existing local files are never overwritten, so rerunning a download only
// fetches what is missing. Categories with an expected file count are skipped
// outright when their local folder already holds exactly that many files.
//
// Operator interaction is injected through a Confirmer, so the same
// orchestration serves interactive and unattended runs.
package dataset
