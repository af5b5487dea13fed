// Package options holds the live-reloadable settings of insightslog
// loggers and the change-notification source that publishes them.
package options

import "github.com/philipp01105/insightslog/core"

// Options controls what a logger adds to every record.
type Options struct {
	// IncludeCategoryName adds the logger category under "CategoryName"
	IncludeCategoryName bool `yaml:"include_category_name"`
	// IncludeScopes merges active scopes into the message and properties
	IncludeScopes bool `yaml:"include_scopes"`
	// Enrich is called last with the property bag of every record. It may
	// add or overwrite keys except OriginalFormat. Panics propagate to the
	// logging call site.
	Enrich func(*core.PropertyBag) `yaml:"-"`
}

// Default returns the options used when nothing else is configured.
func Default() Options {
	return Options{
		IncludeCategoryName: true,
		IncludeScopes:       true,
	}
}

// Source publishes options and notifies subscribers about changes.
type Source interface {
	// Current returns the latest options snapshot.
	Current() Options
	// OnChange registers fn for every later change and returns a function
	// that cancels the registration.
	OnChange(fn func(Options)) (unsubscribe func())
}
