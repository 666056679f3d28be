package runlog

import "time"

// #region run-record

// RunRecord is the durable summary of one prepared launch: the resolved
// grid, the timestep the stability check settled on, and where on disk the
// generated inputs went. It exists so past runs can be compared without
// reparsing their parameter files.
type RunRecord struct {
	RunID     string
	Name      string
	Mode      int // 0 forward, 1 inversion
	SaveDir   string
	NX        int
	NY        int
	DH        float64
	DT        float64
	NT        int
	MaxFreq   float64 // dispersion limit logged at launch, 0 when unknown
	CreatedAt time.Time
	Notes     string
}

// #endregion run-record

// #region stage-record

// StageRecord is the logged shape of one scheduled inversion stage.
type StageRecord struct {
	Position int // 0-based position in the schedule
	FCLow    float64
	FCHigh   float64
	LNorm    int
}

// #endregion stage-record
