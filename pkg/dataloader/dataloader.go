// Package dataloader defines the loaders that collect Xray test plan data into the cache.
package dataloader

// DataLoader records failures instead of returning them, so a wrapper can time, count and
// report every loader uniformly.
type DataLoader interface {
	// Name identifies the loader in logs and metric labels.
	Name() string

	// Load collects the loader's data.
	Load()

	// Errors returns the errors recorded by the last Load.
	Errors() []error
}
