package models

// Family identifies one of the three chart-pattern families the pipeline
// detects.
type Family string

const (
	FamilyHNS Family = "HNS"
	FamilyDTB Family = "DTB"
	FamilyTTB Family = "TTB"
)

// Kind is the family-specific variant of a detected pattern.
type Kind string

const (
	KindOCO  Kind = "OCO"  // head-and-shoulders top
	KindOCOI Kind = "OCOI" // inverse head-and-shoulders
	KindDT   Kind = "DT"   // double top
	KindDB   Kind = "DB"   // double bottom
	KindTT   Kind = "TT"   // triple top
	KindTB   Kind = "TB"   // triple bottom
)

// HNSCandidate is a 7-pivot window that could form a head-and-shoulders
// (or inverse) pattern: p0 base, (p1,p3,p5) shoulders/head, (p2,p4)
// neckline anchors, p6 post-breakout retest.
type HNSCandidate struct {
	Kind        Kind
	Pivots      [7]Pivot // p0..p6
	BreakoutIdx int      // -1 if not yet found
	HasRetest   bool
}

// DTBCandidate is a 5-pivot window for double top/bottom: Pivots[0] and
// Pivots[2] the two extremes, Pivots[1] the intervening neckline pivot,
// Pivots[3] the pivot after the second extreme, Pivots[4] the retest.
type DTBCandidate struct {
	Kind        Kind
	Pivots      [5]Pivot // p0..p4
	BreakoutIdx int
	HasRetest   bool
}

// TTBCandidate is a 7-pivot window for triple top/bottom: (p1,p3,p5) the
// three extremes, (p2,p4) the intervening pivots, p6 the retest.
type TTBCandidate struct {
	Kind        Kind
	Pivots      [7]Pivot // p0..p6
	BreakoutIdx int
	HasRetest   bool
}

// PivotField is the (idx, price, kind) triple persisted for every pivot
// of an emitted record, and the shape serialized into the pivos JSON
// column.
type PivotField struct {
	Idx   int       `json:"idx"`
	Price float64   `json:"price"`
	Kind  PivotKind `json:"kind"`
}

// Identity is the (ticker, interval, strategy, kind) tuple that scopes a
// PatternRecord and, together with the family identity index, forms its
// deduplication key.
type Identity struct {
	Ticker   string
	Interval string
	Strategy string
	Kind     Kind
}

// PatternRecord is one accepted, scored pattern candidate ready for
// emission to the sink.
type PatternRecord struct {
	Identity Identity
	Family   Family

	StartIdx    int
	EndIdx      int
	KeyIdx      int // head index (HNS) or p3/p5 index (DTB/TTB) — the identity key
	RetestIdx   int

	Valid      map[string]bool // valid_<rule> -> outcome, populated even for rejected candidates
	ScoreTotal int

	Pivots []PivotField

	// Passthrough convenience duplicates required by the CSV contract.
	Tipo  Kind
	Score int
}
