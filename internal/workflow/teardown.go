package workflow

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/community-network/labkeeper/internal/config"
	"github.com/community-network/labkeeper/internal/mailer"
	"github.com/community-network/labkeeper/internal/template"
)

// Teardown ends a reservation: every lab is archived, stopped, wiped and
// deleted, the permanent admin password is restored, all sessions are
// cleared, and the user receives their archived labs by email.
type Teardown struct {
	cfg    *config.Config
	client platformClient
	store  labStore
	mail   notifier
	render renderFunc
	log    zerolog.Logger
}

// NewTeardown creates a teardown workflow with injected collaborators.
func NewTeardown(cfg *config.Config, client platformClient, store labStore, mail notifier, render renderFunc, logger zerolog.Logger) *Teardown {
	return &Teardown{
		cfg:    cfg,
		client: client,
		store:  store,
		mail:   mail,
		render: render,
		log:    logger,
	}
}

// Run executes the teardown for one reservation. It never returns an
// error: failures are logged, recorded in the run trace and reported to
// the operator address at the end.
func (w *Teardown) Run(ctx context.Context, email, tempPassword string) {
	w.log.Info().Str("email", email).Msg("starting teardown")

	tr := &trace{}
	phases := &phaseTracker{log: w.log}
	phases.enter(PhaseAuthenticating)

	// The reservation normally ends with the temporary password still
	// active. When it never took effect, fall back to the permanent one
	// and remember which credential actually worked; that decides
	// whether a restore is needed later.
	token, status, err := w.client.Authenticate(ctx, w.cfg.AdminUsername, tempPassword)
	usedTemp := true
	if status != http.StatusOK || token == "" {
		w.log.Warn().Err(err).Int("status", status).Msg("temporary password login failed, retrying with the permanent admin password")
		token, status, err = w.client.Authenticate(ctx, w.cfg.AdminUsername, w.cfg.AdminPassword)
		usedTemp = false
	}
	if status != http.StatusOK || token == "" {
		w.log.Error().Err(err).Int("status", status).Msg("authentication failed, aborting teardown")
		tr.add("01: Authenticate failed! Not authenticated!")
		notifyOperator(w.cfg.OperatorEmail, w.mail, w.log, tr, subjectTeardownFailed, "CleanUp")
		phases.enter(PhaseDone)
		return
	}

	phases.enter(PhaseProcessingLabs)
	attachments := w.processLabs(ctx, token, tr)

	w.restoreCredentials(ctx, token, usedTemp, tr, phases)

	phases.enter(PhaseNotifying)
	// The user notification goes out regardless of lab or credential
	// failures; archive failures only mean fewer attachments.
	body, err := w.render("teardown.html", template.PhaseData{
		PlatformURL: w.cfg.PlatformURL,
		BookingURL:  w.cfg.BookingURL,
	})
	if err != nil {
		w.log.Error().Err(err).Msg("failed to render the teardown email")
		tr.add("11: SendEmail failed after cleanup!")
	} else if !w.mail.Send(mailer.Message{
		To:          []string{email},
		Subject:     subjectTeardown,
		HTMLBody:    body,
		Attachments: attachments,
		Bcc:         w.cfg.OperatorEmail,
	}) {
		w.log.Error().Str("email", email).Msg("teardown email was not delivered")
		tr.add("11: SendEmail failed after cleanup!")
	}

	if !tr.empty() {
		notifyOperator(w.cfg.OperatorEmail, w.mail, w.log, tr, subjectTeardownFailed, "CleanUp")
	}
	phases.enter(PhaseDone)
	w.log.Info().Int("labs_archived", len(attachments)).Int("failures", len(tr.entries)).Msg("teardown finished")
}

// processLabs archives and tears down every lab on the controller.
// Failures are isolated per lab: one lab's trouble never blocks the
// next. The returned paths are the successfully archived definitions, in
// processing order; they become the email attachments.
func (w *Teardown) processLabs(ctx context.Context, token string, tr *trace) []string {
	labs, status, err := w.client.ListLabs(ctx, token)
	if status != http.StatusOK {
		w.log.Error().Err(err).Int("status", status).Msg("failed to list labs")
		tr.add("02: ListLabs failed!")
		return nil
	}

	var attachments []string
	for _, lab := range labs {
		nodes, status, err := w.client.ListNodes(ctx, token, lab)
		if status != http.StatusOK {
			w.log.Error().Err(err).Str("lab", lab).Int("status", status).Msg("failed to list nodes")
			tr.add("02: ListNodes failed for %s", lab)
			continue
		}

		for _, node := range nodes {
			// Extraction only works on running nodes; a stopped node is
			// simply missing from the export. Known limitation, not fatal.
			if _, status, err := w.client.ExtractNodeConfig(ctx, token, lab, node); status != http.StatusOK {
				w.log.Error().Err(err).Str("lab", lab).Str("node", node).Int("status", status).Msg("failed to extract node configuration")
				tr.add("03: ExtractNodeConfig failed for %s", node)
			}
		}

		definition, status, err := w.client.DownloadLab(ctx, token, lab)
		if status != http.StatusOK {
			w.log.Error().Err(err).Str("lab", lab).Int("status", status).Msg("failed to download lab")
			tr.add("04: DownloadLab failed for %s", lab)
		} else if saveErr := w.store.Save(lab, definition); saveErr != nil {
			w.log.Error().Err(saveErr).Str("lab", lab).Msg("failed to archive lab")
			tr.add("04: SaveLab failed for %s", lab)
		} else {
			attachments = append(attachments, w.store.Path(lab))
		}

		// Stop, wipe and delete. A wipe only makes sense on a stopped
		// lab, so a failed stop skips it; the delete is always attempted.
		stopStatus, err := w.client.StopLab(ctx, token, lab)
		if stopStatus != http.StatusNoContent {
			w.log.Error().Err(err).Str("lab", lab).Int("status", stopStatus).Msg("failed to stop lab")
			tr.add("05: StopLab failed for %s", lab)
		} else if wipeStatus, err := w.client.WipeLab(ctx, token, lab); wipeStatus != http.StatusNoContent {
			w.log.Error().Err(err).Str("lab", lab).Int("status", wipeStatus).Msg("failed to wipe lab")
			tr.add("05: WipeLab failed for %s", lab)
		}

		if deleteStatus, err := w.client.DeleteLab(ctx, token, lab); deleteStatus != http.StatusNoContent {
			w.log.Error().Err(err).Str("lab", lab).Int("status", deleteStatus).Msg("failed to delete lab")
			tr.add("06: DeleteLab failed for %s", lab)
		}
	}
	return attachments
}

// restoreCredentials puts the permanent admin password back (when the
// temporary one was actually in use this run) and clears every session
// on the controller. Without an admin ID no restore is possible, but the
// logout still runs with whatever token is live, so stray sessions are
// invalidated either way.
func (w *Teardown) restoreCredentials(ctx context.Context, token string, usedTemp bool, tr *trace, phases *phaseTracker) {
	phases.enter(PhaseRestoringCredentials)

	if !usedTemp {
		w.log.Info().Msg("no password restore needed, the temporary password was never active")
		w.forceLogout(ctx, token, tr, phases)
		return
	}

	adminID, status, err := w.client.ResolveAdminID(ctx, token)
	if status != http.StatusOK || adminID == "" {
		w.log.Error().Err(err).Int("status", status).Msg("failed to resolve the admin id")
		tr.add("07: ResolveAdminID failed!")
		w.forceLogout(ctx, token, tr, phases)
		return
	}

	if status := w.client.UpdatePassword(ctx, token, adminID, w.cfg.AdminPassword); status != http.StatusOK {
		w.log.Error().Int("status", status).Msg("failed to restore the admin password")
		tr.add("08: UpdatePassword failed!")
		w.forceLogout(ctx, token, tr, phases)
		return
	}

	// The session behind the old token may die with the password change;
	// re-authenticate before clearing sessions.
	newToken, status, err := w.client.Authenticate(ctx, w.cfg.AdminUsername, w.cfg.AdminPassword)
	if status != http.StatusOK || newToken == "" {
		w.log.Error().Err(err).Int("status", status).Msg("failed to authenticate after restoring the password")
		tr.add("09: Authenticate failed after restoring password!")
		return
	}
	w.forceLogout(ctx, newToken, tr, phases)
}

func (w *Teardown) forceLogout(ctx context.Context, token string, tr *trace, phases *phaseTracker) {
	phases.enter(PhaseInvalidatingSessions)
	if status := w.client.ForceLogout(ctx, token); status != http.StatusOK {
		w.log.Error().Int("status", status).Msg("failed to log all users out")
		tr.add("10: ForceLogout failed!")
	}
}
