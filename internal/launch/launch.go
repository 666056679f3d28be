// Package launch prepares all solver inputs for one run and hands off to
// the external MPI process: stability-checked timestep, model binaries,
// acquisition descriptors, the staged inversion schedule, and the
// round-tripped parameter file.
package launch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/danielpatrickdp/seisrun/go-launcher/internal/decomp"
	"github.com/danielpatrickdp/seisrun/go-launcher/internal/geometry"
	"github.com/danielpatrickdp/seisrun/go-launcher/internal/model"
	"github.com/danielpatrickdp/seisrun/go-launcher/internal/params"
	"github.com/danielpatrickdp/seisrun/go-launcher/internal/runlog"
	"github.com/danielpatrickdp/seisrun/go-launcher/internal/stability"
	"github.com/danielpatrickdp/seisrun/go-launcher/internal/workflow"
)

// Run modes written into the parameter file.
const (
	ModeForward   = 0
	ModeInversion = 1
)

// ErrEmptySchedule is returned when an inversion run is requested without
// any scheduled stages. The check runs before any file is written.
var ErrEmptySchedule = errors.New("launch: inversion schedule has no stages; append at least one stage before launching")

// #region launcher

// Launcher drives runs of one solver installation. The zero value is not
// usable; Root and SaveDir are required.
type Launcher struct {
	Root       string // solver installation root containing bin/denise
	SaveDir    string // directory receiving all generated inputs and outputs
	Name       string // seismogram basename, "seis" when empty
	RunCommand string // MPI launch prefix; "mpirun -np <procs>" when empty
	Disable    bool   // prepare all inputs but skip the solver handoff
	Store      *runlog.Store // optional run ledger
}

// Forward prepares and starts a forward-modeling run.
func (l *Launcher) Forward(ctx context.Context, set *params.Set, m *model.Model,
	src *geometry.Sources, rec *geometry.Receivers) (runlog.RunRecord, error) {
	return l.engine(ctx, set, m, src, rec, nil, ModeForward)
}

// FWI prepares and starts a full-waveform inversion run. The schedule must
// hold at least one stage.
func (l *Launcher) FWI(ctx context.Context, set *params.Set, m *model.Model,
	src *geometry.Sources, rec *geometry.Receivers, sched *workflow.Schedule) (runlog.RunRecord, error) {
	if sched == nil || sched.Len() == 0 {
		return runlog.RunRecord{}, ErrEmptySchedule
	}
	return l.engine(ctx, set, m, src, rec, sched, ModeInversion)
}

// #endregion launcher

// #region engine

func (l *Launcher) engine(ctx context.Context, set *params.Set, m *model.Model,
	src *geometry.Sources, rec *geometry.Receivers, sched *workflow.Schedule,
	mode int) (runlog.RunRecord, error) {

	if err := src.Validate(); err != nil {
		return runlog.RunRecord{}, err
	}
	if err := rec.Validate(); err != nil {
		return runlog.RunRecord{}, err
	}

	k := params.Recognize(set)
	k.Mode = mode
	k.NX = m.NX()
	k.NY = m.NY()
	k.DH = m.DH
	k.NSrc = src.Count()
	k.NRec = rec.Count()

	// The decomposition precondition runs before any directory or file is
	// created so a bad process grid leaves no half-written run behind.
	if err := decomp.Validate(k.NX, k.NY, k.NProcX, k.NProcY); err != nil {
		return runlog.RunRecord{}, err
	}

	layout := NewLayout(l.SaveDir, l.Name)
	if err := layout.MkDirs(); err != nil {
		return runlog.RunRecord{}, err
	}

	class := stability.ErrorClass(k.MaxRelativeError)
	halfLength := stability.HalfLengthFromOrder(k.FDOrder)

	pr := m.MeanPoissonRatio()
	vsMean := m.MeanVS()
	log.Printf("[LAUNCH] elastic ratios: poisson=%.4f vs_mean=%.1f rayleigh=%.1f",
		pr, vsMean, vsMean*(0.862+1.14*pr)/(1+pr))

	if err := l.bindTimestep(&k, m, class, halfLength, mode); err != nil {
		return runlog.RunRecord{}, err
	}

	minVP, minVS := m.MinVelocities()
	fmax, err := stability.MaxSourceFrequency(class, halfLength, k.DH, minVP, minVS)
	if err != nil {
		return runlog.RunRecord{}, err
	}
	log.Printf("[LAUNCH] dispersion limit fmax=%.2f Hz", fmax)
	for i, fc := range src.Freq {
		if fc > fmax {
			log.Printf("[LAUNCH] warning: source %d wavelet at %.2f Hz exceeds the dispersion limit", i, fc)
		}
	}

	if err := m.WriteBinaries(layout.ModelBase()); err != nil {
		return runlog.RunRecord{}, err
	}

	if err := l.writeAcquisition(&k, layout, src, rec); err != nil {
		return runlog.RunRecord{}, err
	}

	if mode == ModeInversion {
		log.Printf("[LAUNCH] writing %d-stage inversion schedule to %s", sched.Len(), layout.WorkflowFile())
		if err := sched.WriteFile(layout.WorkflowFile()); err != nil {
			return runlog.RunRecord{}, err
		}
	}

	layout.Apply(set)
	k.Apply(set)
	if err := set.WriteFile(layout.ParFile()); err != nil {
		return runlog.RunRecord{}, err
	}

	record, err := l.recordRun(k, layout, sched, fmax)
	if err != nil {
		return runlog.RunRecord{}, err
	}

	log.Printf("[LAUNCH] prepared run in %s: NREC=%d NSRC=%d NT=%d", l.SaveDir, k.NRec, k.NSrc, k.NT)
	if l.Disable {
		return record, nil
	}
	return record, l.handoff(ctx, k, layout, mode)
}

// bindTimestep derives DT for the run mode and recomputes NT. A forward
// run uses the model's nonzero velocity extrema; an inversion run without
// an inherited timestep falls back to the box constraints, since the true
// model is unknown there.
func (l *Launcher) bindTimestep(k *params.Known, m *model.Model,
	class stability.ErrorClass, halfLength, mode int) error {

	switch {
	case mode == ModeForward:
		maxVP, maxVS := m.MaxVelocities()
		dt, err := stability.MaxStableDT(class, halfLength, k.DH, maxVP, maxVS)
		if err != nil {
			return err
		}
		k.DT = dt
	case k.DT <= 0:
		dt, err := stability.MaxStableDT(class, halfLength, k.DH, k.VPUpperLim, k.VSUpperLim)
		if err != nil {
			return err
		}
		k.DT = dt
	}
	k.NT = int(k.Time / k.DT)
	log.Printf("[LAUNCH] timestep dt=%g s, nt=%d (%s, half-length %d)", k.DT, k.NT, class, halfLength)
	return nil
}

// writeAcquisition emits the source descriptor, the receiver descriptor
// (one per shot in streamer mode), and the coordinate caches.
func (l *Launcher) writeAcquisition(k *params.Known, layout Layout,
	src *geometry.Sources, rec *geometry.Receivers) error {

	if err := src.WriteFile(layout.SourceFile()); err != nil {
		return err
	}
	if err := src.WriteCoordCache(layout.SourceFile()); err != nil {
		return err
	}

	if k.NStreamer > 0 {
		// Streamer mode tows the same spread behind every shot: the solver
		// reads one receiver file per shot, selected by READREC=2.
		k.ReadRec = 2
		for shot := 1; shot <= k.NSrc; shot++ {
			if err := rec.WriteFile(layout.ShotReceiverFile(shot)); err != nil {
				return err
			}
		}
	} else {
		if err := rec.WriteFile(layout.ReceiverFile()); err != nil {
			return err
		}
	}
	return rec.WriteCoordCache(layout.ReceiverFile())
}

// recordRun persists the launch in the run ledger when one is attached.
func (l *Launcher) recordRun(k params.Known, layout Layout,
	sched *workflow.Schedule, fmax float64) (runlog.RunRecord, error) {

	record := runlog.RunRecord{
		Name:    layout.Name,
		Mode:    k.Mode,
		SaveDir: layout.SaveDir,
		NX:      k.NX, NY: k.NY,
		DH: k.DH, DT: k.DT, NT: k.NT,
		MaxFreq: fmax,
	}
	if l.Store == nil {
		return record, nil
	}

	var stages []runlog.StageRecord
	if sched != nil {
		for i, st := range sched.Stages() {
			stages = append(stages, runlog.StageRecord{
				Position: i, FCLow: st.FCLow, FCHigh: st.FCHigh, LNorm: st.LNorm,
			})
		}
	}
	stored, err := l.Store.RecordRun(record, stages)
	if err != nil {
		return runlog.RunRecord{}, fmt.Errorf("record run: %w", err)
	}
	return stored, nil
}

// handoff starts the solver process and waits for it.
func (l *Launcher) handoff(ctx context.Context, k params.Known, layout Layout, mode int) error {
	prefix := l.RunCommand
	if prefix == "" {
		prefix = fmt.Sprintf("mpirun -np %d", k.NProcX*k.NProcY)
	}

	argv := strings.Fields(prefix)
	argv = append(argv, filepath.Join(l.Root, "bin", "denise"), layout.ParFile())
	if mode == ModeInversion {
		argv = append(argv, layout.WorkflowFile())
	}

	log.Printf("[LAUNCH] exec: %s", strings.Join(argv, " "))
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("solver run: %w", err)
	}
	return nil
}

// #endregion engine
