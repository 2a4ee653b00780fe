package workflow

import (
	"fmt"
	"strings"

	"github.com/community-network/labkeeper/internal/mailer"
	"github.com/rs/zerolog"
)

// Email subjects for each workflow phase. The user-facing ones are in
// Norwegian, matching the notification templates.
const (
	subjectSetup           = "Community Network - CML påloggingsinformasjon"
	subjectTeardown        = "Community Network - CML reservasjon er utløpt"
	subjectError           = "Community Network - CML - Noe gikk galt..."
	subjectTeardownFailed  = "Community Network - CleanUp failed!"
	subjectProvisionFailed = "Community Network - CreateTempUser failed!"
)

// trace accumulates tagged failure descriptions during one workflow run.
// Appending never aborts anything; the trace exists purely for
// end-of-run reporting.
type trace struct {
	entries []string
}

func (t *trace) add(format string, args ...any) {
	t.entries = append(t.entries, fmt.Sprintf(format, args...))
}

func (t *trace) empty() bool {
	return len(t.entries) == 0
}

func (t *trace) String() string {
	return strings.Join(t.entries, "; ")
}

// notifyOperator mails the accumulated trace to the operator address,
// when one is configured. Delivery failure is only logged; there is
// nobody left to tell.
func notifyOperator(operator string, mail notifier, log zerolog.Logger, tr *trace, subject, phase string) {
	if operator == "" {
		return
	}
	body := fmt.Sprintf("%s failed. Error reason: %s", phase, tr)
	if !mail.Send(mailer.Message{To: []string{operator}, Subject: subject, HTMLBody: body}) {
		log.Error().Str("operator", operator).Msg("operator notification was not delivered")
	}
}
