// Package config defines the format-agnostic configuration model and the
// Loader interface that concrete manifest formats implement. The rest of
// the application depends only on this package, never on a parser.
package config
