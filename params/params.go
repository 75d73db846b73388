// Package params holds construction options for the containers, with
// package-level defaults.
package params

import (
	"errors"
	"fmt"
)

// IndexConfig configures a spatial index. Dimensions is required; the
// remaining fields fall back to the defaults below when zero.
type IndexConfig struct {
	// Dimensions is the coordinate count of every point in the index.
	Dimensions int

	// MinBranch and MaxBranch bound the fan-out of box-tree nodes.
	// 2 <= MinBranch <= ceil(MaxBranch/2) must hold.
	MinBranch int
	MaxBranch int

	// LeafCapacity is the bucket size of quadtree leaves.
	LeafCapacity int

	// PoolNodes arena-allocates tree nodes during bulk loads. Useful for
	// large one-shot loads; pointless for incremental workloads.
	PoolNodes bool
}

// DefaultIndexConfig carries the tuned fan-out: 16 child slots keep an
// internal node's box array within a few cache lines.
var DefaultIndexConfig = IndexConfig{
	MinBranch:    8,
	MaxBranch:    16,
	LeafCapacity: 8,
}

// WithDefaults fills zero fields from DefaultIndexConfig.
func (c IndexConfig) WithDefaults() IndexConfig {
	if c.MinBranch == 0 {
		c.MinBranch = DefaultIndexConfig.MinBranch
	}
	if c.MaxBranch == 0 {
		c.MaxBranch = DefaultIndexConfig.MaxBranch
	}
	if c.LeafCapacity == 0 {
		c.LeafCapacity = DefaultIndexConfig.LeafCapacity
	}
	return c
}

// Validate checks the config after defaulting.
func (c IndexConfig) Validate() error {
	if c.Dimensions <= 0 {
		return errors.New("params: index dimensions must be positive")
	}
	if c.MinBranch < 2 || c.MinBranch > (c.MaxBranch+1)/2 {
		return fmt.Errorf("params: branch bounds must satisfy 2 <= min <= ceil(max/2), got (%d, %d)",
			c.MinBranch, c.MaxBranch)
	}
	if c.LeafCapacity < 1 {
		return errors.New("params: leaf capacity must be positive")
	}
	return nil
}

// ArchiveConfig configures a Pareto archive.
type ArchiveConfig struct {
	// Capacity is the soft bound on the total element count across all
	// fronts. Admission evicts down to it after every insert.
	Capacity int
}

var DefaultArchiveConfig = ArchiveConfig{
	Capacity: 1000,
}
