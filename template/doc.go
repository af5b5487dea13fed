// Package template renders structured-logging message templates.
//
// A template names its holes, "{SourceUserId} sent a message to
// {DestinationUserId}", but binds them to arguments by position: the Nth
// hole reads the Nth argument. Format returns the rendered message and
// the properties extracted from the holes, followed by the reserved
// OriginalFormat property holding the template text itself.
//
// Holes may carry an alignment, "{Name,-10}", and a format string,
// "{Amount:N2}". The alignment pads the rendered value; the format is
// accepted but not interpreted. Doubled braces "{{" and "}}" render as
// literal braces.
//
// Formatting never fails. A hole without a matching argument is written
// back verbatim and contributes no property; surplus arguments are
// ignored.
package template
