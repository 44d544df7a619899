// Package stacking implements the physical 3D layout validator: given a
// truck's orders it builds a floor/stack layout and reports whether every
// fragment fit.
package stacking

// Config carries the per-client flags that shape placement. The
// consolidation flag, per-pallet SKU cap and picking height cap are all
// hard constraints.
type Config struct {
	PermiteConsolidacion    bool
	MaxSKUsPorPallet        int
	AlturaMaxPickingApilado float64 // 0 means no cap
}

// DefaultConfig is the conservative default: no consolidation, unlimited
// skus per pallet, no extra picking height cap.
func DefaultConfig() Config {
	return Config{
		PermiteConsolidacion:    false,
		MaxSKUsPorPallet:        0,
		AlturaMaxPickingApilado: 0,
	}
}
