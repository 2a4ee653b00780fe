package workflow

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/community-network/labkeeper/internal/config"
	"github.com/community-network/labkeeper/internal/mailer"
	"github.com/community-network/labkeeper/internal/template"
)

// Provision starts a reservation: the admin password is rotated to a
// temporary value and the user receives the credentials by email. On any
// failure the user gets a generic error notice instead and the operator
// receives the trace.
type Provision struct {
	cfg    *config.Config
	client platformClient
	mail   notifier
	render renderFunc
	log    zerolog.Logger
}

// NewProvision creates a provisioning workflow with injected collaborators.
func NewProvision(cfg *config.Config, client platformClient, mail notifier, render renderFunc, logger zerolog.Logger) *Provision {
	return &Provision{
		cfg:    cfg,
		client: client,
		mail:   mail,
		render: render,
		log:    logger,
	}
}

// Run issues the temporary password for one reservation. It never
// returns an error; see the package documentation.
func (w *Provision) Run(ctx context.Context, email, tempPassword string) {
	w.log.Info().Str("email", email).Msg("starting provisioning")

	tr := &trace{}
	w.rotateAndNotify(ctx, email, tempPassword, tr)

	if tr.empty() {
		w.log.Info().Str("email", email).Msg("provisioning finished")
		return
	}

	// Something failed: the user gets a generic notice so they are not
	// left waiting for credentials that will never arrive.
	body, err := w.render("error.html", template.PhaseData{
		PlatformURL: w.cfg.PlatformURL,
		BookingURL:  w.cfg.BookingURL,
	})
	if err != nil {
		w.log.Error().Err(err).Msg("failed to render the error email")
		tr.add("05: SendEmail failed when sending error email to user!")
	} else if !w.mail.Send(mailer.Message{
		To:       []string{email},
		Subject:  subjectError,
		HTMLBody: body,
		Bcc:      w.cfg.OperatorEmail,
	}) {
		w.log.Error().Str("email", email).Msg("error email was not delivered")
		tr.add("05: SendEmail failed when sending error email to user!")
	}

	notifyOperator(w.cfg.OperatorEmail, w.mail, w.log, tr, subjectProvisionFailed, "CreateTempUser")
	w.log.Warn().Int("failures", len(tr.entries)).Str("email", email).Msg("provisioning finished with failures")
}

// rotateAndNotify walks the happy path: authenticate, resolve the admin
// id, rotate the password, mail the credentials. The first failure stops
// the sequence; later steps make no sense without the earlier ones.
func (w *Provision) rotateAndNotify(ctx context.Context, email, tempPassword string, tr *trace) {
	token, status, err := w.client.Authenticate(ctx, w.cfg.AdminUsername, w.cfg.AdminPassword)
	if status != http.StatusOK || token == "" {
		w.log.Error().Err(err).Int("status", status).Msg("authentication failed")
		tr.add("01: Authenticate failed! Not authenticated!")
		return
	}

	adminID, status, err := w.client.ResolveAdminID(ctx, token)
	if status != http.StatusOK || adminID == "" {
		w.log.Error().Err(err).Int("status", status).Msg("failed to resolve the admin id")
		tr.add("02: ResolveAdminID failed!")
		return
	}

	if status := w.client.UpdatePassword(ctx, token, adminID, tempPassword); status != http.StatusOK {
		w.log.Error().Int("status", status).Msg("failed to set the temporary password")
		tr.add("03: UpdatePassword failed!")
		return
	}

	body, err := w.render("setup.html", template.SetupData{
		Username:    w.cfg.AdminUsername,
		Password:    tempPassword,
		PlatformURL: w.cfg.PlatformURL,
		BookingURL:  w.cfg.BookingURL,
	})
	if err != nil {
		w.log.Error().Err(err).Msg("failed to render the setup email")
		tr.add("04: SendEmail failed after creating user!")
		return
	}
	if !w.mail.Send(mailer.Message{
		To:       []string{email},
		Subject:  subjectSetup,
		HTMLBody: body,
		Bcc:      w.cfg.OperatorEmail,
	}) {
		w.log.Error().Str("email", email).Msg("setup email was not delivered")
		tr.add("04: SendEmail failed after creating user!")
	}
}
