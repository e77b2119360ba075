package config

import "context"

// Loader translates configuration sources into the format-agnostic Model.
// Implementations own all format-specific parsing; consumers of the Model
// never see manifest syntax.
type Loader interface {
	// Load reads every manifest reachable from the given paths and
	// returns the merged model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
