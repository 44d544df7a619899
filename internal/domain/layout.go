package domain

// PhysicalFragment is one unit going into a physical pallet slot.
type PhysicalFragment struct {
	SKUID         string
	ParentOrderID string
	Fraction      float64 // in (0, 1]
	HeightCm      float64
	WeightKg      float64
	VolumeM3      float64
	Category      StackCategory
	IsPicking     bool
}

// PhysicalPallet is a vertical unit on a FloorPosition: an ordered list of
// Fragments.
type PhysicalPallet struct {
	Fragments []PhysicalFragment
}

func (p *PhysicalPallet) HeightCm() float64 {
	total := 0.0
	for _, f := range p.Fragments {
		total += f.HeightCm
	}
	return total
}

func (p *PhysicalPallet) WeightKg() float64 {
	total := 0.0
	for _, f := range p.Fragments {
		total += f.WeightKg
	}
	return total
}

func (p *PhysicalPallet) VolumeM3() float64 {
	total := 0.0
	for _, f := range p.Fragments {
		total += f.VolumeM3
	}
	return total
}

// Consolidated reports whether the pallet holds fragments from two or more
// distinct orders.
func (p *PhysicalPallet) Consolidated() bool {
	orders := make(map[string]bool)
	for _, f := range p.Fragments {
		orders[f.ParentOrderID] = true
		if len(orders) >= 2 {
			return true
		}
	}
	return false
}

// DominantCategory is the pallet's most restrictive fragment category
// (no_apilable > base > superior > si_mismo > flexible).
func (p *PhysicalPallet) DominantCategory() StackCategory {
	var counts StackCounts
	for _, f := range p.Fragments {
		switch f.Category {
		case CategoryBase:
			counts.Base++
		case CategorySuperior:
			counts.Superior++
		case CategoryFlexible:
			counts.Flexible++
		case CategoryNoApilable:
			counts.NoApilable++
		case CategorySiMismo:
			counts.SiMismo++
		}
	}
	return counts.dominant()
}

// SingleSKUID returns the pallet's sku id when every fragment shares one,
// which is required for si_mismo dominance checks. The second return value
// is false when the pallet is empty or mixes sku ids.
func (p *PhysicalPallet) SingleSKUID() (string, bool) {
	if len(p.Fragments) == 0 {
		return "", false
	}
	id := p.Fragments[0].SKUID
	for _, f := range p.Fragments[1:] {
		if f.SKUID != id {
			return "", false
		}
	}
	return id, true
}

// FloorPosition is a slot on the truck floor holding up to capacity's
// vertical-levels count of PhysicalPallets.
type FloorPosition struct {
	Index   int
	Pallets []*PhysicalPallet
}

func (fp *FloorPosition) Top() *PhysicalPallet {
	if len(fp.Pallets) == 0 {
		return nil
	}
	return fp.Pallets[len(fp.Pallets)-1]
}

func (fp *FloorPosition) UsedHeight() float64 {
	total := 0.0
	for _, p := range fp.Pallets {
		total += p.HeightCm()
	}
	return total
}

// Layout is the fixed-size physical arrangement the stacking validator
// produces for one Truck.
type Layout struct {
	Positions []*FloorPosition
}

// UsedPositions counts non-empty floor positions.
func (l *Layout) UsedPositions() int {
	used := 0
	for _, p := range l.Positions {
		if len(p.Pallets) > 0 {
			used++
		}
	}
	return used
}

func (l *Layout) TotalWeight() float64 {
	total := 0.0
	for _, p := range l.Positions {
		for _, pallet := range p.Pallets {
			total += pallet.WeightKg()
		}
	}
	return total
}

func (l *Layout) TotalVolume() float64 {
	total := 0.0
	for _, p := range l.Positions {
		for _, pallet := range p.Pallets {
			total += pallet.VolumeM3()
		}
	}
	return total
}

// MaxUsedHeight returns the tallest stack across all floor positions, used
// by the reclassifier to test against a smaller truck's interior height.
func (l *Layout) MaxUsedHeight() float64 {
	max := 0.0
	for _, p := range l.Positions {
		if h := p.UsedHeight(); h > max {
			max = h
		}
	}
	return max
}
