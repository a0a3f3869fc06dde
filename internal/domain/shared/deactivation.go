package shared

// DeactivationReport counts the rows flipped to inactive by a cascading deactivation,
// keyed by table name.
type DeactivationReport struct {
	Rows map[string]int64
}

// NewDeactivationReport creates an empty report
func NewDeactivationReport() *DeactivationReport {
	return &DeactivationReport{Rows: make(map[string]int64)}
}

// Add records the rows affected in a table
func (r *DeactivationReport) Add(table string, rows int64) {
	r.Rows[table] += rows
}

// Total returns the number of rows deactivated across all tables
func (r *DeactivationReport) Total() int64 {
	var total int64
	for _, n := range r.Rows {
		total += n
	}
	return total
}
