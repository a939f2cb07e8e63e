package query

// Table is the read-only view of the loaded vector table the query pipeline
// depends on. Implementations must be safe for concurrent readers.
type Table interface {
	Size() int
	Dimension() int
	RowOf(word string) (int, bool)
	WordAt(row int) string
	VectorAt(row int) []float32
	NormAt(row int) float64
}
