package launch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/danielpatrickdp/seisrun/go-launcher/internal/decomp"
	"github.com/danielpatrickdp/seisrun/go-launcher/internal/geometry"
	"github.com/danielpatrickdp/seisrun/go-launcher/internal/model"
	"github.com/danielpatrickdp/seisrun/go-launcher/internal/params"
	"github.com/danielpatrickdp/seisrun/go-launcher/internal/runlog"
	"github.com/danielpatrickdp/seisrun/go-launcher/internal/workflow"
)

const parTemplate = `#-----------------------------------------------------------------
#      PARAMETER FILE FOR 2-D ELASTIC FD MODELING / FWI
#-----------------------------------------------------------------
number_of_processors_in_x-direction_(NPROCX) = 5
number_of_processors_in_y-direction_(NPROCY) = 3
number_of_gridpoints_in_x-direction_(NX) = 100
number_of_gridpoints_in_y-direction_(NY) = 100
distance_between_gridpoints(in_m)_(DH) = 10.0
time_of_wave_propagation_(in_sec)_(TIME) = 6.0
timestep_(in_seconds)_(DT) = 2.0e-03
number_of_timesteps_(NT) = 3000
FD_ORDER = 6
max_relative_error = 0
MODE = 0
NSRC = 0
NREC = 0
N_STREAMER = 0
READREC = 1
VPUPPERLIM = 3500.0
VSUPPERLIM = 2000.0
model_file_(MFILE) = start/model
receiver_file_(REC_FILE) = receiver/receivers
source_file_(SOURCE_FILE) = source/sources.dat
`

func testSet(t *testing.T, overrides map[string]string) *params.Set {
	t.Helper()
	text := parTemplate
	for name, val := range overrides {
		found := false
		for _, line := range strings.Split(parTemplate, "\n") {
			if strings.Contains(line, "("+name+")") || strings.HasPrefix(line, name+" ") {
				eq := strings.LastIndex(line, "=")
				text = strings.Replace(text, line, line[:eq]+"= "+val, 1)
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("override %s not in template", name)
		}
	}
	return params.Parse(text)
}

func testGeometry() (*geometry.Sources, *geometry.Receivers) {
	sx, sy := geometry.Line(100, 900, 400, 40)
	rx, ry := geometry.Line(100, 900, 100, 460)
	return geometry.NewSources(sx, sy), geometry.NewReceivers(rx, ry)
}

func testLauncher(t *testing.T) *Launcher {
	t.Helper()
	return &Launcher{
		Root:    "/opt/denise",
		SaveDir: filepath.Join(t.TempDir(), "run"),
		Disable: true,
	}
}

func TestForwardPreparesRunDirectory(t *testing.T) {
	l := testLauncher(t)
	set := testSet(t, nil)
	m := model.Constant(174, 500, 3500, 3500/1.7, 1800, 20.0)
	src, rec := testGeometry()

	stored, err := l.Forward(context.Background(), set, m, src, rec)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(l.SaveDir, "seis.inp"))
	if err != nil {
		t.Fatalf("read parameter file: %v", err)
	}
	out := params.Parse(string(raw))
	if v := out.GetFloat("DT", 0); v != 0.0025 {
		t.Fatalf("DT = %g, want 0.0025", v)
	}
	if v := out.GetInt("NT", 0); v != 2400 {
		t.Fatalf("NT = %d, want 2400", v)
	}
	if v := out.GetInt("NX", 0); v != 500 {
		t.Fatalf("NX = %d, want 500 (bound from the model)", v)
	}
	if v := out.GetInt("NSRC", -1); v != src.Count() {
		t.Fatalf("NSRC = %d, want %d", v, src.Count())
	}
	if v := out.GetString("MFILE", ""); v != filepath.Join(l.SaveDir, "start", "model") {
		t.Fatalf("MFILE = %q not bound to the save directory", v)
	}

	vp, err := os.ReadFile(filepath.Join(l.SaveDir, "start", "model.vp"))
	if err != nil {
		t.Fatalf("read model binary: %v", err)
	}
	if len(vp) != 500*174*4 {
		t.Fatalf("model binary is %d bytes, want %d", len(vp), 500*174*4)
	}

	for _, f := range []string{
		filepath.Join("source", "sources.dat"),
		filepath.Join("source", "src_x.npy"),
		filepath.Join("receiver", "receivers.dat"),
		filepath.Join("receiver", "rec_y.npy"),
	} {
		if _, err := os.Stat(filepath.Join(l.SaveDir, f)); err != nil {
			t.Fatalf("missing generated file %s: %v", f, err)
		}
	}

	if stored.DT != 0.0025 || stored.Mode != ModeForward {
		t.Fatalf("run record wrong: %+v", stored)
	}
}

func TestForwardRejectsBadDecompositionBeforeIO(t *testing.T) {
	l := testLauncher(t)
	set := testSet(t, nil)
	// 501 columns do not divide across 5 processes.
	m := model.Constant(174, 501, 3500, 2000, 1800, 20.0)
	src, rec := testGeometry()

	_, err := l.Forward(context.Background(), set, m, src, rec)
	var derr *decomp.Error
	if !errors.As(err, &derr) {
		t.Fatalf("expected decomposition error, got %v", err)
	}
	if derr.Axis != "X" {
		t.Fatalf("failing axis = %q, want X", derr.Axis)
	}
	if _, statErr := os.Stat(l.SaveDir); !os.IsNotExist(statErr) {
		t.Fatal("save directory created despite failed precondition")
	}
}

func TestFWIRefusesEmptySchedule(t *testing.T) {
	l := testLauncher(t)
	set := testSet(t, nil)
	m := model.Constant(174, 500, 3500, 2000, 1800, 20.0)
	src, rec := testGeometry()

	_, err := l.FWI(context.Background(), set, m, src, rec, &workflow.Schedule{})
	if !errors.Is(err, ErrEmptySchedule) {
		t.Fatalf("expected ErrEmptySchedule, got %v", err)
	}
	if _, statErr := os.Stat(l.SaveDir); !os.IsNotExist(statErr) {
		t.Fatal("save directory created despite empty schedule")
	}
}

func TestFWIKeepsInheritedTimestep(t *testing.T) {
	l := testLauncher(t)
	db := filepath.Join(t.TempDir(), "runs.db")
	store, err := runlog.NewStore(db)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	l.Store = store

	set := testSet(t, nil)
	m := model.Constant(174, 500, 3500, 2000, 1800, 20.0)
	src, rec := testGeometry()

	var sched workflow.Schedule
	st := workflow.NewStage()
	st.FCHigh = 2.0
	if err := sched.Append(st); err != nil {
		t.Fatalf("Append: %v", err)
	}

	stored, err := l.FWI(context.Background(), set, m, src, rec, &sched)
	if err != nil {
		t.Fatalf("FWI: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(l.SaveDir, "seis.inp"))
	if err != nil {
		t.Fatalf("read parameter file: %v", err)
	}
	out := params.Parse(string(raw))
	// A preset timestep from an earlier forward run survives inversion.
	if v := out.GetFloat("DT", 0); v != 0.002 {
		t.Fatalf("DT = %g, want inherited 0.002", v)
	}
	if v := out.GetInt("NT", 0); v != 3000 {
		t.Fatalf("NT = %d, want 3000", v)
	}
	if v := out.GetInt("MODE", -1); v != ModeInversion {
		t.Fatalf("MODE = %d, want %d", v, ModeInversion)
	}

	wf, err := os.ReadFile(filepath.Join(l.SaveDir, "seis_fwi.inp"))
	if err != nil {
		t.Fatalf("read workflow file: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(wf), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("workflow file has %d lines, want header + 1 stage", len(lines))
	}

	_, stages, err := store.GetRun(stored.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if len(stages) != 1 || stages[0].FCHigh != 2.0 {
		t.Fatalf("ledger stages wrong: %+v", stages)
	}
}

func TestInversionWithoutTimestepUsesBoxConstraints(t *testing.T) {
	l := testLauncher(t)
	set := testSet(t, map[string]string{"DT": "0.0"})
	m := model.Constant(174, 500, 3500, 2000, 1800, 20.0)
	src, rec := testGeometry()

	var sched workflow.Schedule
	if err := sched.Append(workflow.NewStage()); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := l.FWI(context.Background(), set, m, src, rec, &sched); err != nil {
		t.Fatalf("FWI: %v", err)
	}

	raw, _ := os.ReadFile(filepath.Join(l.SaveDir, "seis.inp"))
	out := params.Parse(string(raw))
	// dt from VPUPPERLIM=3500 at dh=20, order-6 Taylor.
	if v := out.GetFloat("DT", 0); v != 0.0025 {
		t.Fatalf("DT = %g, want 0.0025 from box constraints", v)
	}
}

func TestStreamerModeWritesPerShotReceivers(t *testing.T) {
	l := testLauncher(t)
	set := testSet(t, map[string]string{"N_STREAMER": "1"})
	m := model.Constant(174, 500, 3500, 2000, 1800, 20.0)
	src, rec := testGeometry()

	if _, err := l.Forward(context.Background(), set, m, src, rec); err != nil {
		t.Fatalf("Forward: %v", err)
	}

	for shot := 1; shot <= src.Count(); shot++ {
		f := filepath.Join(l.SaveDir, "receiver", "receivers_shot_"+strconv.Itoa(shot)+".dat")
		if _, err := os.Stat(f); err != nil {
			t.Fatalf("missing per-shot receiver file %d: %v", shot, err)
		}
	}
	if _, err := os.Stat(filepath.Join(l.SaveDir, "receiver", "receivers.dat")); !os.IsNotExist(err) {
		t.Fatal("fixed-spread receiver file written in streamer mode")
	}

	raw, _ := os.ReadFile(filepath.Join(l.SaveDir, "seis.inp"))
	out := params.Parse(string(raw))
	if v := out.GetInt("READREC", 0); v != 2 {
		t.Fatalf("READREC = %d, want 2 in streamer mode", v)
	}
}

func TestPreparationIsIdempotent(t *testing.T) {
	l := testLauncher(t)
	m := model.Constant(174, 500, 3500, 3500/1.7, 1800, 20.0)
	src, rec := testGeometry()

	if _, err := l.Forward(context.Background(), testSet(t, nil), m, src, rec); err != nil {
		t.Fatalf("first Forward: %v", err)
	}
	first, err := os.ReadFile(filepath.Join(l.SaveDir, "seis.inp"))
	if err != nil {
		t.Fatalf("read first parameter file: %v", err)
	}

	if _, err := l.Forward(context.Background(), testSet(t, nil), m, src, rec); err != nil {
		t.Fatalf("second Forward: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(l.SaveDir, "seis.inp"))
	if err != nil {
		t.Fatalf("read second parameter file: %v", err)
	}
	if string(first) != string(second) {
		t.Fatal("repeated preparation produced different parameter files")
	}
}
