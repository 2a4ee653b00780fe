package workflow

import (
	"context"

	"github.com/community-network/labkeeper/internal/mailer"
)

// platformClient defines the controller operations the workflows need.
//
// In production, this is satisfied by *cmlapi.Client.
// In tests, this is satisfied by mock implementations.
type platformClient interface {
	// Authenticate logs in and returns a bearer token.
	Authenticate(ctx context.Context, username, password string) (string, int, error)

	// ListLabs returns every lab ID on the controller.
	ListLabs(ctx context.Context, token string) ([]string, int, error)

	// ListNodes returns every node ID in a lab.
	ListNodes(ctx context.Context, token, labID string) ([]string, int, error)

	// ExtractNodeConfig pulls a running node's configuration into the lab.
	ExtractNodeConfig(ctx context.Context, token, labID, nodeID string) (string, int, error)

	// DownloadLab returns a lab definition as YAML text.
	DownloadLab(ctx context.Context, token, labID string) (string, int, error)

	// StopLab stops a lab (success 204).
	StopLab(ctx context.Context, token, labID string) (int, error)

	// WipeLab wipes a stopped lab (success 204).
	WipeLab(ctx context.Context, token, labID string) (int, error)

	// DeleteLab deletes a lab (success 204).
	DeleteLab(ctx context.Context, token, labID string) (int, error)

	// ResolveAdminID returns the admin account's user ID.
	ResolveAdminID(ctx context.Context, token string) (string, int, error)

	// UpdatePassword rotates a user's password and returns the last
	// observed status.
	UpdatePassword(ctx context.Context, token, userID, newPassword string) int

	// ForceLogout clears every session; success is 200.
	ForceLogout(ctx context.Context, token string) int
}

// labStore archives downloaded lab definitions.
//
// In production, this is satisfied by *archive.Store.
type labStore interface {
	// Save writes a lab definition, replacing prior content.
	Save(labID, content string) error

	// Path returns the archive path for a lab ID.
	Path(labID string) string
}

// notifier delivers one email; false means the message was not accepted.
//
// In production, this is satisfied by *mailer.Mailer.
type notifier interface {
	Send(msg mailer.Message) bool
}

// renderFunc maps a template name and data to an HTML body.
//
// In production, this is template.Render.
type renderFunc func(name string, data any) (string, error)
