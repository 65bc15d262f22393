package models

// PivotKind identifies whether a pivot is a local high (Peak) or a local
// low (Valley) in the ZigZag reduction of a price series.
type PivotKind int

const (
	Valley PivotKind = iota
	Peak
)

func (k PivotKind) String() string {
	if k == Peak {
		return "PEAK"
	}
	return "VALLEY"
}

// Opposite returns the kind that alternates with k.
func (k PivotKind) Opposite() PivotKind {
	if k == Peak {
		return Valley
	}
	return Peak
}

// Pivot is one confirmed (or provisional, trailing) extremum produced by
// the ZigZag extractor. Idx indexes into the source PriceSeries.
type Pivot struct {
	Idx         int
	Price       float64
	Kind        PivotKind
	Provisional bool
}
