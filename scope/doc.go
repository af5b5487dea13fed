// Package scope carries logging scopes through a context.Context.
//
// A scope is either plain text, which shows up in the scope path of a
// record ("=> Outer => Inner"), or a structured set of properties, which
// is merged into the record's property bag. Scopes nest: Push derives a
// new context whose stack is the parent's stack plus one entry, and the
// returned release function retires exactly that entry.
//
// Stacks are immutable linked nodes, so independent goroutines holding
// different contexts never observe each other's scopes.
package scope
