// Package mailer delivers the notification emails over SMTP.
package mailer

import (
	"mime"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

// plainFallback is the text/plain part for clients that do not render HTML.
const plainFallback = "Denne e-posten har HTML-innhold. Åpne i en HTML-kompatibel klient."

// Message is one outgoing email. Attachments are file paths; paths that
// no longer exist are skipped with a warning rather than failing the send.
type Message struct {
	To          []string
	Subject     string
	HTMLBody    string
	Attachments []string
	Bcc         string
}

// Mailer sends messages through one SMTP account.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	log      zerolog.Logger
}

// New creates a Mailer. An empty username disables SMTP authentication,
// for local relays.
func New(host string, port int, username, password, from string, logger zerolog.Logger) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		log:      logger,
	}
}

// Send delivers one message. Build, dial and provider failures are all
// reported as false and logged; they never propagate. True means exactly
// one message was accepted.
func (m *Mailer) Send(msg Message) bool {
	mm := mail.NewMsg()
	if err := mm.From(m.from); err != nil {
		m.log.Error().Err(err).Str("from", m.from).Msg("invalid sender address")
		return false
	}
	if err := mm.To(msg.To...); err != nil {
		m.log.Error().Err(err).Strs("to", msg.To).Msg("invalid recipient address")
		return false
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextPlain, plainFallback)
	mm.AddAlternativeString(mail.TypeTextHTML, msg.HTMLBody)

	if bcc := bccFor(msg.To, msg.Bcc); bcc != "" {
		if err := mm.Bcc(bcc); err != nil {
			m.log.Error().Err(err).Str("bcc", bcc).Msg("invalid bcc address")
			return false
		}
	}

	for _, path := range msg.Attachments {
		if _, err := os.Stat(path); err != nil {
			m.log.Warn().Str("path", path).Msg("attachment no longer exists, skipping")
			continue
		}
		mm.AttachFile(path, mail.WithFileContentType(mail.ContentType(attachmentType(path))))
	}

	opts := []mail.Option{mail.WithPort(m.port)}
	if m.username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.username),
			mail.WithPassword(m.password),
		)
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(m.host, opts...)
	if err != nil {
		m.log.Error().Err(err).Msg("failed to create smtp client")
		return false
	}
	if err := client.DialAndSend(mm); err != nil {
		m.log.Error().Err(err).Strs("to", msg.To).Str("subject", msg.Subject).Msg("failed to send email")
		return false
	}

	m.log.Info().Strs("to", msg.To).Str("subject", msg.Subject).Int("attachments", len(msg.Attachments)).Msg("email sent")
	return true
}

// bccFor returns the bcc address to use, or "" when none is configured or
// the address is already among the recipients.
func bccFor(to []string, bcc string) string {
	if bcc == "" {
		return ""
	}
	for _, addr := range to {
		if addr == bcc {
			return ""
		}
	}
	return bcc
}

// attachmentType infers a MIME type from the filename extension, falling
// back to a generic binary type.
func attachmentType(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}
