// Package statsview optionally serves runtime statistics of the emulator
// process over HTTP. The server is only built with the statsview build tag,
// otherwise Launch reports ErrUnavailable.
//
// After launch the graphs are available at
//
//	<address>/debug/statsview
//
// and the standard pprof handlers at <address>/debug/pprof/.
package statsview

import "errors"

// Path is the URL path of the statistics page.
const Path = "/debug/statsview"

// ErrUnavailable is returned by Launch when the binary was built without
// the statsview build tag.
var ErrUnavailable = errors.New("stats server not available, build with -tags statsview")
