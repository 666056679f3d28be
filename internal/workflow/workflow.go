// Package workflow describes the staged FWI schedule: an ordered sequence
// of inversion-stage records serialized into the solver's tab-separated
// control file. Stage order is execution order; the schedule never reorders
// or deduplicates.
package workflow

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// #region stage

// Frequency filter modes (TIME_FILT).
const (
	FilterNone     = 0 // no frequency filter
	FilterLowPass  = 1 // low-pass field data and wavelet
	FilterBandPass = 2 // band-pass field data and wavelet
)

// Objective-function norms (LNORM).
const (
	NormL2          = 2 // least squares
	NormGlobalCorr  = 5 // global correlation
	NormEnvelope    = 6 // envelope misfit, experimental
	NormIntegration = 7 // normalized-integration misfit, experimental
)

// Gradient preconditioning modes (EPRECOND).
const (
	PrecondNone          = 0
	PrecondPseudoHessian = 1
	PrecondHessianApprox = 3
)

// Stage is one step of a staged-frequency or staged-parameter inversion
// schedule. The field set is the full control-file schema; NewStage fills
// every field with its conventional default so no stage can reach the
// serializer incomplete.
type Stage struct {
	Pro       float64 // termination criterion on relative misfit change
	TimeFilt  int     // frequency filter mode, one of the Filter constants
	FCLow     float64 // low corner frequency of the Butterworth filter [Hz]
	FCHigh    float64 // high corner frequency of the Butterworth filter [Hz]
	Order     int     // Butterworth filter order
	TimeWin   int     // time windowing switch
	Gamma     float64 // time-window damping
	TWinMinus float64 // window width before the pick [s]
	TWinPlus  float64 // window width after the pick [s]

	InvVPIter  int // start vp updates from this iteration
	InvVSIter  int // start vs updates from this iteration
	InvRhoIter int // start density updates from this iteration
	InvQSIter  int // start Qs updates from this iteration

	SpatFilter int     // spatial gradient filter; 0 off, 4 wavelength-adaptive Gaussian
	WDDamp     float64 // Gaussian half-width fraction of local wavelength, x
	WDDamp1    float64 // Gaussian half-width fraction of local wavelength, y

	EPrecond int // gradient preconditioning, one of the Precond constants
	LNorm    int // objective function, one of the Norm constants

	STF        int     // source-wavelet inversion by stabilized Wiener deconvolution when 1
	OffsetCSTF float64 // limit wavelet inversion to this offset when > 0 [m]
	EpsSTF     float64 // Wiener deconvolution stabilization term

	OffsetMute int     // 0 off, 1 mute far offsets >= OffsetC, 2 mute near offsets <= OffsetC
	OffsetC    float64 // offset-mute corner [m]

	ScaleRho float64 // density update scale in multiparameter FWI
	ScaleQS  float64 // Qs update scale in multiparameter FWI

	Env    int // envelope flavor when LNorm is NormEnvelope; 1 L2, 2 log-L2
	NOrder int // integrate data this many times, experimental
}

// NewStage returns a stage with every field at its documented default:
// a low-pass stage to 5 Hz, L2 norm, Hessian-approximation
// preconditioning, no wavelet inversion, no muting.
func NewStage() Stage {
	return Stage{
		Pro:        0.01,
		TimeFilt:   FilterLowPass,
		FCLow:      0.0,
		FCHigh:     5.0,
		Order:      6,
		TimeWin:    0,
		Gamma:      20,
		TWinMinus:  0.0,
		TWinPlus:   0.0,
		InvVPIter:  0,
		InvVSIter:  0,
		InvRhoIter: 0,
		InvQSIter:  0,
		SpatFilter: 0,
		WDDamp:     0.5,
		WDDamp1:    0.5,
		EPrecond:   PrecondHessianApprox,
		LNorm:      NormL2,
		STF:        0,
		OffsetCSTF: -4.0,
		EpsSTF:     0.1,
		OffsetMute: 0,
		OffsetC:    10,
		ScaleRho:   0.5,
		ScaleQS:    1.0,
		Env:        1,
		NOrder:     0,
	}
}

// #endregion stage

// #region stage-validate

// Validate checks a single stage against the field ranges the solver
// accepts. Every stage is validated independently before it joins a
// schedule.
func (st Stage) Validate() error {
	if st.Pro <= 0 {
		return fmt.Errorf("stage: termination criterion %g must be positive", st.Pro)
	}
	switch st.TimeFilt {
	case FilterNone, FilterLowPass, FilterBandPass:
	default:
		return fmt.Errorf("stage: TIME_FILT %d not in {0,1,2}", st.TimeFilt)
	}
	if st.TimeFilt != FilterNone {
		if st.FCHigh <= 0 {
			return fmt.Errorf("stage: FC_high %g must be positive when filtering", st.FCHigh)
		}
		if st.FCLow < 0 || st.FCLow > st.FCHigh {
			return fmt.Errorf("stage: filter band [%g, %g] inverted", st.FCLow, st.FCHigh)
		}
		if st.Order <= 0 {
			return fmt.Errorf("stage: filter order %d must be positive", st.Order)
		}
	}
	for name, it := range map[string]int{
		"INV_VP_ITER": st.InvVPIter, "INV_VS_ITER": st.InvVSIter,
		"INV_RHO_ITER": st.InvRhoIter, "INV_QS_ITER": st.InvQSIter,
	} {
		if it < 0 {
			return fmt.Errorf("stage: %s %d must not be negative", name, it)
		}
	}
	if st.SpatFilter != 0 && st.SpatFilter != 4 {
		return fmt.Errorf("stage: SPATFILTER %d not in {0,4}", st.SpatFilter)
	}
	switch st.EPrecond {
	case PrecondNone, PrecondPseudoHessian, PrecondHessianApprox:
	default:
		return fmt.Errorf("stage: EPRECOND %d not in {0,1,3}", st.EPrecond)
	}
	switch st.LNorm {
	case NormL2, NormGlobalCorr, NormEnvelope, NormIntegration:
	default:
		return fmt.Errorf("stage: LNORM %d not in {2,5,6,7}", st.LNorm)
	}
	if st.STF != 0 && st.STF != 1 {
		return fmt.Errorf("stage: STF %d not in {0,1}", st.STF)
	}
	if st.OffsetMute < 0 || st.OffsetMute > 2 {
		return fmt.Errorf("stage: OFFSET_MUTE %d not in {0,1,2}", st.OffsetMute)
	}
	if st.Env != 1 && st.Env != 2 {
		return fmt.Errorf("stage: ENV %d not in {1,2}", st.Env)
	}
	if st.NOrder < 0 {
		return fmt.Errorf("stage: N_ORDER %d must not be negative", st.NOrder)
	}
	return nil
}

// #endregion stage-validate

// #region schedule

// Schedule is the append-only, ordered stage sequence. An empty schedule
// is valid state but refuses serialization into a run: the launcher turns
// that into ErrEmptySchedule before any file is written.
type Schedule struct {
	stages []Stage
}

// Append validates the stage and adds it at the end.
func (s *Schedule) Append(st Stage) error {
	if err := st.Validate(); err != nil {
		return err
	}
	s.stages = append(s.stages, st)
	return nil
}

// Len returns the number of scheduled stages.
func (s *Schedule) Len() int { return len(s.stages) }

// Stages returns the stages in execution order.
func (s *Schedule) Stages() []Stage { return s.stages }

// #endregion schedule

// #region serialize

// header names the 29 control-file columns. NORMALIZE and GAMMA_GRAV are
// reserved: the columns stay so the solver's parser aligns everything
// after them, but their cells are always the literal 0.
const header = "PRO \t TIME_FILT \t FC_low \t FC_high \t ORDER \t TIME_WIN \t" +
	" GAMMA \t TWIN- \t TWIN+ \t INV_VP_ITER \t INV_VS_ITER \t" +
	" INV_RHO_ITER \t INV_QS_ITER \t SPATFILTER \t WD_DAMP \t WD_DAMP1" +
	" \t EPRECOND \t LNORM \t STF_INV \t OFFSETC_STF \t EPS_STF \t NORMALIZE" +
	" \t OFFSET_MUTE \t OFFSETC \t SCALERHO \t SCALEQS \t ENV \t GAMMA_GRAV \t N_ORDER \n"

// Serialize renders the header plus one tab-separated row per stage in
// append order.
func (s *Schedule) Serialize() string {
	var b strings.Builder
	b.WriteString(header)
	for _, st := range s.stages {
		b.WriteString(st.row())
	}
	return b.String()
}

// WriteFile serializes the schedule to the workflow control file.
func (s *Schedule) WriteFile(path string) error {
	if err := os.WriteFile(path, []byte(s.Serialize()), 0o644); err != nil {
		return fmt.Errorf("write workflow file %s: %w", path, err)
	}
	return nil
}

func (st Stage) row() string {
	cols := []string{
		ff(st.Pro),
		strconv.Itoa(st.TimeFilt),
		ff(st.FCLow),
		ff(st.FCHigh),
		strconv.Itoa(st.Order),
		strconv.Itoa(st.TimeWin),
		ff(st.Gamma),
		ff(st.TWinMinus),
		ff(st.TWinPlus),
		strconv.Itoa(st.InvVPIter),
		strconv.Itoa(st.InvVSIter),
		strconv.Itoa(st.InvRhoIter),
		strconv.Itoa(st.InvQSIter),
		strconv.Itoa(st.SpatFilter),
		ff(st.WDDamp),
		ff(st.WDDamp1),
		strconv.Itoa(st.EPrecond),
		strconv.Itoa(st.LNorm),
		strconv.Itoa(st.STF),
		ff(st.OffsetCSTF),
		ff(st.EpsSTF),
		"0", // NORMALIZE, reserved
		strconv.Itoa(st.OffsetMute),
		ff(st.OffsetC),
		ff(st.ScaleRho),
		ff(st.ScaleQS),
		strconv.Itoa(st.Env),
		"0", // GAMMA_GRAV, reserved
		strconv.Itoa(st.NOrder),
	}
	return strings.Join(cols, "\t") + "\n"
}

// ff renders a float column with an explicit decimal point.
func ff(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !math.IsInf(f, 0) && !math.IsNaN(f) {
		s += ".0"
	}
	return s
}

// #endregion serialize
