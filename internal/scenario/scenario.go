// Package scenario loads a declarative YAML run description: the model,
// the acquisition line geometry, the inversion stage list, and raw
// parameter overrides. A scenario plus a parameter file template is
// everything a launch needs.
package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/seisrun/go-launcher/internal/geometry"
	"github.com/danielpatrickdp/seisrun/go-launcher/internal/model"
	"github.com/danielpatrickdp/seisrun/go-launcher/internal/params"
	"github.com/danielpatrickdp/seisrun/go-launcher/internal/workflow"
)

// #region types

// Scenario is the top-level run description.
type Scenario struct {
	Name       string            `yaml:"name"`
	RunCommand string            `yaml:"run_command"`
	Model      ModelSpec         `yaml:"model"`
	Sources    SourceSpec        `yaml:"sources"`
	Receivers  ReceiverSpec      `yaml:"receivers"`
	Stages     []StageSpec       `yaml:"stages"`
	Overrides  map[string]string `yaml:"overrides"`
}

// ModelSpec selects exactly one model source: a combined NPY file or a
// constant fill.
type ModelSpec struct {
	DH       float64       `yaml:"dh"`
	NPY      string        `yaml:"npy"`
	Constant *ConstantSpec `yaml:"constant"`
}

// ConstantSpec fills a homogeneous model.
type ConstantSpec struct {
	NY  int     `yaml:"ny"`
	NX  int     `yaml:"nx"`
	VP  float64 `yaml:"vp"`
	VS  float64 `yaml:"vs"`
	Rho float64 `yaml:"rho"`
}

// LineSpec places positions evenly from first to last at constant depth.
type LineSpec struct {
	First float64 `yaml:"first"`
	Last  float64 `yaml:"last"`
	Step  float64 `yaml:"step"`
	Depth float64 `yaml:"depth"`
}

// SourceSpec describes the shot line and shared wavelet properties.
type SourceSpec struct {
	Line        *LineSpec `yaml:"line"`
	WaveletFreq float64   `yaml:"wavelet_freq"`
}

// ReceiverSpec describes the receiver line.
type ReceiverSpec struct {
	Line *LineSpec `yaml:"line"`
}

// StageSpec overrides individual stage fields; nil fields keep the stage
// defaults. Field names follow the control-file columns.
type StageSpec struct {
	Pro        *float64 `yaml:"pro"`
	TimeFilt   *int     `yaml:"time_filt"`
	FCLow      *float64 `yaml:"fc_low"`
	FCHigh     *float64 `yaml:"fc_high"`
	Order      *int     `yaml:"order"`
	TimeWin    *int     `yaml:"time_win"`
	Gamma      *float64 `yaml:"gamma"`
	TWinMinus  *float64 `yaml:"twin_minus"`
	TWinPlus   *float64 `yaml:"twin_plus"`
	InvVPIter  *int     `yaml:"inv_vp_iter"`
	InvVSIter  *int     `yaml:"inv_vs_iter"`
	InvRhoIter *int     `yaml:"inv_rho_iter"`
	InvQSIter  *int     `yaml:"inv_qs_iter"`
	SpatFilter *int     `yaml:"spatfilter"`
	WDDamp     *float64 `yaml:"wd_damp"`
	WDDamp1    *float64 `yaml:"wd_damp1"`
	EPrecond   *int     `yaml:"eprecond"`
	LNorm      *int     `yaml:"lnorm"`
	STF        *int     `yaml:"stf"`
	OffsetCSTF *float64 `yaml:"offsetc_stf"`
	EpsSTF     *float64 `yaml:"eps_stf"`
	OffsetMute *int     `yaml:"offset_mute"`
	OffsetC    *float64 `yaml:"offsetc"`
	ScaleRho   *float64 `yaml:"scale_rho"`
	ScaleQS    *float64 `yaml:"scale_qs"`
	Env        *int     `yaml:"env"`
	NOrder     *int     `yaml:"n_order"`
}

// #endregion types

// #region load

// Load reads and validates a scenario file. A relative NPY model path is
// resolved against the scenario's directory.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if sc.Model.NPY != "" && !filepath.IsAbs(sc.Model.NPY) {
		sc.Model.NPY = filepath.Join(filepath.Dir(path), sc.Model.NPY)
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

// Validate checks the scenario is complete enough to build a run.
func (sc *Scenario) Validate() error {
	if sc.Model.DH <= 0 {
		return fmt.Errorf("model spacing %g must be positive", sc.Model.DH)
	}
	if (sc.Model.NPY == "") == (sc.Model.Constant == nil) {
		return fmt.Errorf("model needs exactly one of npy or constant")
	}
	if sc.Sources.Line == nil {
		return fmt.Errorf("sources.line missing")
	}
	if sc.Receivers.Line == nil {
		return fmt.Errorf("receivers.line missing")
	}
	return nil
}

// #endregion load

// #region builders

// BuildModel materializes the model grids.
func (sc *Scenario) BuildModel() (*model.Model, error) {
	if sc.Model.NPY != "" {
		return model.FromNPY(sc.Model.NPY, sc.Model.DH)
	}
	c := sc.Model.Constant
	if c.NY <= 0 || c.NX <= 0 {
		return nil, fmt.Errorf("constant model shape %dx%d invalid", c.NY, c.NX)
	}
	return model.Constant(c.NY, c.NX, c.VP, c.VS, c.Rho, sc.Model.DH), nil
}

// BuildSources lays out the shot line.
func (sc *Scenario) BuildSources() *geometry.Sources {
	x, y := geometry.Line(sc.Sources.Line.First, sc.Sources.Line.Last,
		sc.Sources.Line.Step, sc.Sources.Line.Depth)
	src := geometry.NewSources(x, y)
	if sc.Sources.WaveletFreq > 0 {
		for i := range src.Freq {
			src.Freq[i] = sc.Sources.WaveletFreq
		}
	}
	return src
}

// BuildReceivers lays out the receiver line.
func (sc *Scenario) BuildReceivers() *geometry.Receivers {
	x, y := geometry.Line(sc.Receivers.Line.First, sc.Receivers.Line.Last,
		sc.Receivers.Line.Step, sc.Receivers.Line.Depth)
	return geometry.NewReceivers(x, y)
}

// BuildSchedule turns the stage specs into a validated schedule. Stage
// order in the scenario is execution order.
func (sc *Scenario) BuildSchedule() (*workflow.Schedule, error) {
	var sched workflow.Schedule
	for i, spec := range sc.Stages {
		st := workflow.NewStage()
		spec.apply(&st)
		if err := sched.Append(st); err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
	}
	return &sched, nil
}

func (sp StageSpec) apply(st *workflow.Stage) {
	setF := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setI := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setF(&st.Pro, sp.Pro)
	setI(&st.TimeFilt, sp.TimeFilt)
	setF(&st.FCLow, sp.FCLow)
	setF(&st.FCHigh, sp.FCHigh)
	setI(&st.Order, sp.Order)
	setI(&st.TimeWin, sp.TimeWin)
	setF(&st.Gamma, sp.Gamma)
	setF(&st.TWinMinus, sp.TWinMinus)
	setF(&st.TWinPlus, sp.TWinPlus)
	setI(&st.InvVPIter, sp.InvVPIter)
	setI(&st.InvVSIter, sp.InvVSIter)
	setI(&st.InvRhoIter, sp.InvRhoIter)
	setI(&st.InvQSIter, sp.InvQSIter)
	setI(&st.SpatFilter, sp.SpatFilter)
	setF(&st.WDDamp, sp.WDDamp)
	setF(&st.WDDamp1, sp.WDDamp1)
	setI(&st.EPrecond, sp.EPrecond)
	setI(&st.LNorm, sp.LNorm)
	setI(&st.STF, sp.STF)
	setF(&st.OffsetCSTF, sp.OffsetCSTF)
	setF(&st.EpsSTF, sp.EpsSTF)
	setI(&st.OffsetMute, sp.OffsetMute)
	setF(&st.OffsetC, sp.OffsetC)
	setF(&st.ScaleRho, sp.ScaleRho)
	setF(&st.ScaleQS, sp.ScaleQS)
	setI(&st.Env, sp.Env)
	setI(&st.NOrder, sp.NOrder)
}

// ApplyOverrides writes the raw parameter overrides into a set, typing
// each value the way the registry parser would.
func (sc *Scenario) ApplyOverrides(s *params.Set) {
	for name, raw := range sc.Overrides {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			s.Set(name, params.Int(i))
			continue
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			s.Set(name, params.Float(f))
			continue
		}
		s.Set(name, params.Str(raw))
	}
}

// #endregion builders
