package launch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/danielpatrickdp/seisrun/go-launcher/internal/params"
)

// #region layout

// subfolders is the directory tree the solver expects under the save
// directory. Every run gets the full tree even when a mode leaves some
// folders empty; the solver aborts on a missing output directory mid-run.
var subfolders = []string{
	"start", "su", "receiver", "source", "snap", "log",
	"wavelet", "jacobian", "model", "gravity", "picked_times", "trace_kill",
}

// Layout binds the generated input files and the solver's output paths to
// one save directory. Name is the seismogram basename threaded through
// every derived filename.
type Layout struct {
	SaveDir string
	Name    string
}

// NewLayout builds a layout, defaulting the basename to "seis".
func NewLayout(saveDir, name string) Layout {
	if name == "" {
		name = "seis"
	}
	return Layout{SaveDir: saveDir, Name: name}
}

// MkDirs creates the save directory and the full solver subfolder tree.
func (l Layout) MkDirs() error {
	for _, sub := range subfolders {
		if err := os.MkdirAll(filepath.Join(l.SaveDir, sub), 0o755); err != nil {
			return fmt.Errorf("create run folder %s: %w", sub, err)
		}
	}
	return nil
}

// #endregion layout

// #region derived-paths

// ParFile is the generated parameter file.
func (l Layout) ParFile() string {
	return filepath.Join(l.SaveDir, l.Name+".inp")
}

// WorkflowFile is the generated inversion control file.
func (l Layout) WorkflowFile() string {
	return filepath.Join(l.SaveDir, l.Name+"_fwi.inp")
}

// ModelBase is the basename the property binaries are written next to
// (.vp, .vs, .rho suffixes).
func (l Layout) ModelBase() string {
	return filepath.Join(l.SaveDir, "start", "model")
}

// SourceFile is the source descriptor.
func (l Layout) SourceFile() string {
	return filepath.Join(l.SaveDir, "source", "sources.dat")
}

// receiverBase is the receiver path as the solver sees it, extensionless;
// the solver appends ".dat" itself.
func (l Layout) receiverBase() string {
	return filepath.Join(l.SaveDir, "receiver", "receivers")
}

// ReceiverFile is the receiver descriptor written in fixed-spread runs.
func (l Layout) ReceiverFile() string {
	return l.receiverBase() + ".dat"
}

// ShotReceiverFile is the per-shot receiver descriptor written in streamer
// runs; shot numbering starts at 1.
func (l Layout) ShotReceiverFile(shot int) string {
	return fmt.Sprintf("%s_shot_%d.dat", l.receiverBase(), shot)
}

// #endregion derived-paths

// #region apply

// Apply binds every solver path parameter to this layout. Parameters the
// loaded file never declared stay in the registry overflow and are not
// serialized, matching the file's own schema.
func (l Layout) Apply(s *params.Set) {
	route := func(parts ...string) string {
		return filepath.Join(append([]string{l.SaveDir}, parts...)...)
	}
	n := l.Name

	s.SetString("DATA_DIR", route("su", n))
	s.SetString("MFILE", route("start", "model"))
	s.SetString("SEIS_FILE_VX", route("su", n+"_x.su"))
	s.SetString("SEIS_FILE_VY", route("su", n+"_y.su"))
	s.SetString("SEIS_FILE_CURL", route("su", n+"_rot.su"))
	s.SetString("SEIS_FILE_DIV", route("su", n+"_div.su"))
	s.SetString("SEIS_FILE_P", route("su", n+"_p.su"))
	s.SetString("REC_FILE", route("receiver", "receivers"))
	s.SetString("SOURCE_FILE", route("source", "sources.dat"))
	s.SetString("SIGNAL_FILE", route("wavelet", "wavelet_"+n))
	s.SetString("SNAP_FILE", route("snap", "waveform_forward"))
	s.SetString("LOG_FILE", route("log", n+".log"))
	s.SetString("JACOBIAN", route("jacobian", "gradient_Test"))
	s.SetString("MISFIT_LOG_FILE", route(n+"_fwi_log.dat"))
	s.SetString("INV_MODELFILE", route("model", "modelTest"))
	s.SetString("TRKILL_FILE", route("trace_kill", "trace_kill.dat"))
	s.SetString("PICKS_FILE", route("picked_times", "picks_"))
	s.SetString("DATA_DIR_T0", route("su", "CAES_spike_time_0", n+"_CAES"))
	s.SetString("DFILE", route("gravity", "background_density.rho"))
}

// #endregion apply
