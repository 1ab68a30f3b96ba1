package mirror

import "fmt"

// Progress is the running state of a job
type Progress struct {
	TableIndex int
	TableCount int
	Table      string

	// counters of the current table
	Copied  int64
	Total   int64
	Batches int

	TotalCopied int64
	Skipped     []string
}

// Percent is the copied fraction of the current table in [0, 1].
// An unknown total reports 0.
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	return min(float64(p.Copied)/float64(p.Total), 1)
}

// TableLine renders "Table i/n: name"
func (p Progress) TableLine() string {
	return fmt.Sprintf("Table %d/%d: %s", p.TableIndex+1, p.TableCount, p.Table)
}

// RowsLine renders "copied/total rows (pct%)"
func (p Progress) RowsLine() string {
	return fmt.Sprintf("%d/%d rows (%.0f%%)", p.Copied, p.Total, p.Percent()*100)
}
