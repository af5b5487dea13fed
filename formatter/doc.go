// Package formatter defines how telemetry records are serialized into bytes
// for writer-based sinks such as the console handler.
//
// It exposes two interfaces: Formatter, which returns a []byte, and
// WriterFormatter, which writes directly to an io.Writer. Handlers
// check for WriterFormatter at construction time and prefer it when
// available, eliminating the intermediate byte slice allocation on
// the write path.
//
// The JSONFormatter writes one envelope per line carrying the record kind,
// severity, category, the message or exception, and the property bag in
// insertion order. The TextFormatter writes a single human-readable line.
//
// Buffers larger than 64 KiB are not returned to the pool to prevent
// a single large record from permanently inflating memory usage.
package formatter
