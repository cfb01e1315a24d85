package batch

// ReadingBatch is the in-memory columnar representation of a set of sensor
// readings: one slice per column (struct-of-slices) rather than a
// slice-of-structs, so that per-column operations (imputation, grouping,
// aggregation) stay vectorized. All slices are always kept the same
// length; Len reports it.
type ReadingBatch struct {
	SensorID    []string
	Timestamp   []string
	ReadingType []string
	Value       []*float64
	Battery     []*float64

	// Populated by the timestamp and feature-derivation stages.
	// Empty/nil until those stages run.
	TimestampIST     []string
	Date             []string
	DailyAvg         []*float64
	Rolling7dAvg     []*float64
	AnomalousReading []*bool
}

// NewReadingBatch allocates a batch with capacity n and length 0.
func NewReadingBatch(n int) *ReadingBatch {
	return &ReadingBatch{
		SensorID:    make([]string, 0, n),
		Timestamp:   make([]string, 0, n),
		ReadingType: make([]string, 0, n),
		Value:       make([]*float64, 0, n),
		Battery:     make([]*float64, 0, n),
	}
}

// Len returns the number of rows in the batch.
func (b *ReadingBatch) Len() int {
	return len(b.SensorID)
}

// hasDerived reports whether the derived-feature columns have been
// allocated (i.e. FeatureEngineer or TimestampProcessor has already run).
func (b *ReadingBatch) hasDerived() bool {
	return len(b.TimestampIST) == len(b.SensorID) && len(b.SensorID) > 0
}

// AppendRow appends a single flat Row to the batch's columns.
func (b *ReadingBatch) AppendRow(r Row) {
	b.SensorID = append(b.SensorID, r.SensorID)
	b.Timestamp = append(b.Timestamp, r.Timestamp)
	b.ReadingType = append(b.ReadingType, r.ReadingType)
	b.Value = append(b.Value, r.Value)
	b.Battery = append(b.Battery, r.Battery)
	b.TimestampIST = append(b.TimestampIST, r.TimestampIST)
	b.Date = append(b.Date, r.Date)
	b.DailyAvg = append(b.DailyAvg, r.DailyAvg)
	b.Rolling7dAvg = append(b.Rolling7dAvg, r.Rolling7dAvg)
	b.AnomalousReading = append(b.AnomalousReading, r.AnomalousReading)
}

// Row returns the flat Row representation of row i.
func (b *ReadingBatch) Row(i int) Row {
	r := Row{
		SensorID:    b.SensorID[i],
		Timestamp:   b.Timestamp[i],
		ReadingType: b.ReadingType[i],
		Value:       b.Value[i],
		Battery:     b.Battery[i],
	}
	if i < len(b.TimestampIST) {
		r.TimestampIST = b.TimestampIST[i]
	}
	if i < len(b.Date) {
		r.Date = b.Date[i]
	}
	if i < len(b.DailyAvg) {
		r.DailyAvg = b.DailyAvg[i]
	}
	if i < len(b.Rolling7dAvg) {
		r.Rolling7dAvg = b.Rolling7dAvg[i]
	}
	if i < len(b.AnomalousReading) {
		r.AnomalousReading = b.AnomalousReading[i]
	}
	return r
}

// Rows materializes the whole batch as a slice of flat Rows, for handing to
// the Parquet writer.
func (b *ReadingBatch) Rows() []Row {
	rows := make([]Row, b.Len())
	for i := range rows {
		rows[i] = b.Row(i)
	}
	return rows
}

// FromRows builds a ReadingBatch from a slice of flat Rows, as read back
// from a Parquet file.
func FromRows(rows []Row) *ReadingBatch {
	b := NewReadingBatch(len(rows))
	for _, r := range rows {
		b.AppendRow(r)
	}
	return b
}

// Select returns a new batch containing only the rows at the given indices,
// preserving order. Used by DataCleaner's dedup/null-drop/outlier steps and
// by any stage that filters rows.
func (b *ReadingBatch) Select(indices []int) *ReadingBatch {
	out := NewReadingBatch(len(indices))
	derived := b.hasDerived()
	for _, i := range indices {
		out.SensorID = append(out.SensorID, b.SensorID[i])
		out.Timestamp = append(out.Timestamp, b.Timestamp[i])
		out.ReadingType = append(out.ReadingType, b.ReadingType[i])
		out.Value = append(out.Value, b.Value[i])
		out.Battery = append(out.Battery, b.Battery[i])
		if derived {
			out.TimestampIST = append(out.TimestampIST, b.TimestampIST[i])
			out.Date = append(out.Date, b.Date[i])
			out.DailyAvg = append(out.DailyAvg, b.DailyAvg[i])
			out.Rolling7dAvg = append(out.Rolling7dAvg, b.Rolling7dAvg[i])
			out.AnomalousReading = append(out.AnomalousReading, b.AnomalousReading[i])
		}
	}
	return out
}

// Clone returns a shallow copy of the batch (new slices, same pointer
// elements); safe for a stage to mutate the copy's slices without affecting
// the original.
func (b *ReadingBatch) Clone() *ReadingBatch {
	indices := make([]int, b.Len())
	for i := range indices {
		indices[i] = i
	}
	return b.Select(indices)
}

// EnsureDerivedColumns allocates (if absent) the derived-feature columns
// with zero values, so TimestampProcessor/FeatureEngineer can assign into
// them positionally.
func (b *ReadingBatch) EnsureDerivedColumns() {
	n := b.Len()
	if len(b.TimestampIST) != n {
		b.TimestampIST = make([]string, n)
	}
	if len(b.Date) != n {
		b.Date = make([]string, n)
	}
	if len(b.DailyAvg) != n {
		b.DailyAvg = make([]*float64, n)
	}
	if len(b.Rolling7dAvg) != n {
		b.Rolling7dAvg = make([]*float64, n)
	}
	if len(b.AnomalousReading) != n {
		b.AnomalousReading = make([]*bool, n)
	}
}

// Float is a small helper for building a *float64 literal inline.
func Float(v float64) *float64 { return &v }

// Bool is a small helper for building a *bool literal inline.
func Bool(v bool) *bool { return &v }
