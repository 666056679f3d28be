package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/seisrun/go-launcher/internal/params"
)

const sampleScenario = `name: marmousi_demo
run_command: mpirun -np 15
model:
  dh: 20.0
  constant:
    ny: 174
    nx: 500
    vp: 3500.0
    vs: 2058.8
    rho: 1800.0
sources:
  line: {first: 800, last: 8780, step: 960, depth: 40}
  wavelet_freq: 6.0
receivers:
  line: {first: 800, last: 8780, step: 20, depth: 460}
stages:
  - fc_high: 2.0
  - fc_high: 5.0
    stf: 1
overrides:
  NPROCX: "5"
  NPROCY: "3"
  VPUPPERLIM: "4200.0"
`

func loadSample(t *testing.T) *Scenario {
	t.Helper()
	path := filepath.Join(t.TempDir(), "demo.yaml")
	if err := os.WriteFile(path, []byte(sampleScenario), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	sc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return sc
}

func TestLoadBuildsModelAndGeometry(t *testing.T) {
	sc := loadSample(t)

	m, err := sc.BuildModel()
	if err != nil {
		t.Fatalf("BuildModel: %v", err)
	}
	if m.NY() != 174 || m.NX() != 500 {
		t.Fatalf("model shape %dx%d, want 174x500", m.NY(), m.NX())
	}
	if m.VP[0][0] != 3500 || m.DH != 20 {
		t.Fatalf("model fill wrong: vp=%g dh=%g", m.VP[0][0], m.DH)
	}

	src := sc.BuildSources()
	if src.Count() != 9 {
		t.Fatalf("got %d shots, want 9", src.Count())
	}
	if src.Freq[0] != 6.0 {
		t.Fatalf("wavelet frequency = %g, want scenario override 6.0", src.Freq[0])
	}
	if src.Y[0] != 40 {
		t.Fatalf("shot depth = %g, want 40", src.Y[0])
	}

	rec := sc.BuildReceivers()
	if rec.Count() != 400 {
		t.Fatalf("got %d receivers, want 400", rec.Count())
	}
}

func TestBuildScheduleKeepsOrderAndDefaults(t *testing.T) {
	sc := loadSample(t)

	sched, err := sc.BuildSchedule()
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}
	stages := sched.Stages()
	if len(stages) != 2 {
		t.Fatalf("got %d stages, want 2", len(stages))
	}
	if stages[0].FCHigh != 2.0 || stages[1].FCHigh != 5.0 {
		t.Fatalf("stage order wrong: %g, %g", stages[0].FCHigh, stages[1].FCHigh)
	}
	if stages[0].STF != 0 || stages[1].STF != 1 {
		t.Fatalf("stf override wrong: %d, %d", stages[0].STF, stages[1].STF)
	}
	// Unset fields keep the stage defaults.
	if stages[0].LNorm != 2 || stages[0].EPrecond != 3 {
		t.Fatalf("defaults lost: lnorm=%d eprecond=%d", stages[0].LNorm, stages[0].EPrecond)
	}
}

func TestBuildScheduleRejectsInvalidStage(t *testing.T) {
	sc := loadSample(t)
	bad := 3
	sc.Stages = append(sc.Stages, StageSpec{LNorm: &bad})
	if _, err := sc.BuildSchedule(); err == nil {
		t.Fatal("expected stage validation error")
	}
}

func TestApplyOverridesTypesValues(t *testing.T) {
	sc := loadSample(t)
	s := params.Parse("NPROCX = 1\nNPROCY = 1\nVPUPPERLIM = 3500.0\n")
	sc.ApplyOverrides(s)

	if v := s.GetInt("NPROCX", 0); v != 5 {
		t.Fatalf("NPROCX = %d, want 5", v)
	}
	if v := s.GetFloat("VPUPPERLIM", 0); v != 4200 {
		t.Fatalf("VPUPPERLIM = %g, want 4200", v)
	}
}

func TestValidateRejectsAmbiguousModel(t *testing.T) {
	sc := loadSample(t)
	sc.Model.NPY = "also.npy"
	if err := sc.Validate(); err == nil {
		t.Fatal("expected error for both npy and constant")
	}
	sc.Model.NPY = ""
	sc.Model.Constant = nil
	if err := sc.Validate(); err == nil {
		t.Fatal("expected error for neither npy nor constant")
	}
}
