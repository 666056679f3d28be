package params

// #region known

// Known is the explicit, typed view of the parameters the launcher itself
// reads or writes. Everything else in the file passes through the Set
// untouched. Field defaults apply when the parsed file omits the name.
type Known struct {
	NProcX int // processes along X (default 1)
	NProcY int // processes along Y (default 1)

	NX int     // grid points along X
	NY int     // grid points along Y
	DH float64 // grid spacing [m]

	Time float64 // total recording time [s]
	DT   float64 // time step [s]; derived before every run
	NT   int     // time samples; int(Time/DT)

	FDOrder          int // spatial operator order; half-length = FDOrder/2 (default 6)
	MaxRelativeError int // operator error class 0..4 (default 0, exact Taylor)

	Mode int // 0 forward modeling, 1 full-waveform inversion

	NSrc int // shot count, bound from the source set
	NRec int // receiver count, bound from the receiver set

	NStreamer int // towed-streamer mode when > 0
	ReadRec   int // receiver-file mode; forced to 2 in streamer runs

	VPUpperLim float64 // inversion box constraint, max vp [m/s] (default 3500)
	VSUpperLim float64 // inversion box constraint, max vs [m/s] (default 2000)
}

// #endregion known

// #region recognize

// Recognize extracts the typed view from a parsed set, applying defaults
// for absent names.
func Recognize(s *Set) Known {
	return Known{
		NProcX:           s.GetInt("NPROCX", 1),
		NProcY:           s.GetInt("NPROCY", 1),
		NX:               s.GetInt("NX", 0),
		NY:               s.GetInt("NY", 0),
		DH:               s.GetFloat("DH", 0),
		Time:             s.GetFloat("TIME", 0),
		DT:               s.GetFloat("DT", 0),
		NT:               s.GetInt("NT", 0),
		FDOrder:          s.GetInt("FD_ORDER", 6),
		MaxRelativeError: s.GetInt("max_relative_error", 0),
		Mode:             s.GetInt("MODE", 0),
		NSrc:             s.GetInt("NSRC", 0),
		NRec:             s.GetInt("NREC", 0),
		NStreamer:        s.GetInt("N_STREAMER", 0),
		ReadRec:          s.GetInt("READREC", 1),
		VPUpperLim:       s.GetFloat("VPUPPERLIM", 3500),
		VSUpperLim:       s.GetFloat("VSUPPERLIM", 2000),
	}
}

// #endregion recognize

// #region apply

// Apply writes the typed view back into the set. Unchanged values leave
// their lines untouched; names the file never declared stay in the
// overflow and are not serialized.
func (k Known) Apply(s *Set) {
	s.SetInt("NPROCX", k.NProcX)
	s.SetInt("NPROCY", k.NProcY)
	s.SetInt("NX", k.NX)
	s.SetInt("NY", k.NY)
	s.SetFloat("DH", k.DH)
	s.SetFloat("TIME", k.Time)
	s.SetFloat("DT", k.DT)
	s.SetInt("NT", k.NT)
	s.SetInt("FD_ORDER", k.FDOrder)
	s.SetInt("max_relative_error", k.MaxRelativeError)
	s.SetInt("MODE", k.Mode)
	s.SetInt("NSRC", k.NSrc)
	s.SetInt("NREC", k.NRec)
	s.SetInt("N_STREAMER", k.NStreamer)
	s.SetInt("READREC", k.ReadRec)
	s.SetFloat("VPUPPERLIM", k.VPUpperLim)
	s.SetFloat("VSUPPERLIM", k.VSUpperLim)
}

// #endregion apply
