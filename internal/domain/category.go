package domain

// StackCategory is the stackability class of a SKU, fragment or pallet.
type StackCategory int

const (
	CategoryNoApilable StackCategory = iota
	CategoryBase
	CategorySuperior
	CategorySiMismo
	CategoryFlexible
)

func (c StackCategory) String() string {
	switch c {
	case CategoryNoApilable:
		return "no_apilable"
	case CategoryBase:
		return "base"
	case CategorySuperior:
		return "superior"
	case CategorySiMismo:
		return "si_mismo"
	case CategoryFlexible:
		return "flexible"
	default:
		return "unknown"
	}
}

// dominancePriority derives a SKU's single dominant category from its
// per-category counts: no_apilable > base > superior > si_mismo > flexible.
var dominancePriority = []StackCategory{
	CategoryNoApilable, CategoryBase, CategorySuperior, CategorySiMismo, CategoryFlexible,
}

// PlacementOrder is the order fragments are offered to the stacking
// validator: no_apilable, base, si_mismo, flexible, superior. It differs
// from dominancePriority because placement wants the heaviest constraints
// first and leaves superior, which only ever sits on top, for last.
var PlacementOrder = []StackCategory{
	CategoryNoApilable, CategoryBase, CategorySiMismo, CategoryFlexible, CategorySuperior,
}

// StackCounts holds the five stackability counts, always non-negative.
type StackCounts struct {
	Base       float64
	Superior   float64
	Flexible   float64
	NoApilable float64
	SiMismo    float64
}

func (c StackCounts) Sum() float64 {
	return c.Base + c.Superior + c.Flexible + c.NoApilable + c.SiMismo
}

func (c StackCounts) Get(cat StackCategory) float64 {
	switch cat {
	case CategoryBase:
		return c.Base
	case CategorySuperior:
		return c.Superior
	case CategoryFlexible:
		return c.Flexible
	case CategoryNoApilable:
		return c.NoApilable
	case CategorySiMismo:
		return c.SiMismo
	default:
		return 0
	}
}

func (c StackCounts) Add(o StackCounts) StackCounts {
	return StackCounts{
		Base:       c.Base + o.Base,
		Superior:   c.Superior + o.Superior,
		Flexible:   c.Flexible + o.Flexible,
		NoApilable: c.NoApilable + o.NoApilable,
		SiMismo:    c.SiMismo + o.SiMismo,
	}
}

// dominant returns the category with priority according to dominancePriority,
// i.e. the first category in that list with a strictly positive count.
func (c StackCounts) dominant() StackCategory {
	for _, cat := range dominancePriority {
		if c.Get(cat) > epsilon {
			return cat
		}
	}
	return CategoryFlexible
}
