package workflow

import "github.com/rs/zerolog"

// Phase identifies where a workflow run currently is. Phases exist for
// logging and post-mortem reading of a run; they carry no behavior.
type Phase string

const (
	// PhaseAuthenticating covers the initial login, including the
	// temporary-to-permanent password fallback.
	PhaseAuthenticating Phase = "Authenticating"
	// PhaseProcessingLabs covers enumeration, archiving and the
	// stop/wipe/delete sequence for every lab.
	PhaseProcessingLabs Phase = "ProcessingLabs"
	// PhaseRestoringCredentials covers admin id resolution and the
	// password restore.
	PhaseRestoringCredentials Phase = "RestoringCredentials"
	// PhaseInvalidatingSessions covers the forced global logout.
	PhaseInvalidatingSessions Phase = "InvalidatingSessions"
	// PhaseNotifying covers the user and operator emails.
	PhaseNotifying Phase = "Notifying"
	// PhaseDone is terminal; every run ends here, failures included.
	PhaseDone Phase = "Done"
)

// phaseTracker logs phase transitions and remembers the current one.
type phaseTracker struct {
	current Phase
	log     zerolog.Logger
}

func (p *phaseTracker) enter(next Phase) {
	p.log.Debug().Str("from", string(p.current)).Str("to", string(next)).Msg("phase transition")
	p.current = next
}
