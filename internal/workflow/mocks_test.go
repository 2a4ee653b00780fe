package workflow

import (
	"context"
	"net/http"

	"github.com/community-network/labkeeper/internal/mailer"
)

// mockPlatformClient is a mock implementation of the platformClient
// interface for testing.
type mockPlatformClient struct {
	// Configurable behavior
	authenticateFunc      func(username, password string) (string, int, error)
	listLabsFunc          func(token string) ([]string, int, error)
	listNodesFunc         func(token, labID string) ([]string, int, error)
	extractNodeConfigFunc func(token, labID, nodeID string) (string, int, error)
	downloadLabFunc       func(token, labID string) (string, int, error)
	stopLabFunc           func(token, labID string) (int, error)
	wipeLabFunc           func(token, labID string) (int, error)
	deleteLabFunc         func(token, labID string) (int, error)
	resolveAdminIDFunc    func(token string) (string, int, error)
	updatePasswordFunc    func(token, userID, newPassword string) int
	forceLogoutFunc       func(token string) int

	// Call tracking
	authenticateCalls      [][2]string // username, password
	listLabsCalls          []string
	listNodesCalls         []string
	extractNodeConfigCalls [][2]string // labID, nodeID
	downloadLabCalls       []string
	stopLabCalls           []string
	wipeLabCalls           []string
	deleteLabCalls         []string
	resolveAdminIDCalls    []string
	updatePasswordCalls    [][2]string // userID, newPassword
	forceLogoutCalls       []string
}

// newMockPlatformClient creates a mock client whose defaults follow the
// happy path: both passwords authenticate, one running lab with one
// node, every operation succeeds.
func newMockPlatformClient() *mockPlatformClient {
	m := &mockPlatformClient{}

	m.authenticateFunc = func(username, password string) (string, int, error) {
		return "tok-" + password, http.StatusOK, nil
	}
	m.listLabsFunc = func(token string) ([]string, int, error) {
		return []string{"L1"}, http.StatusOK, nil
	}
	m.listNodesFunc = func(token, labID string) ([]string, int, error) {
		return []string{"n0"}, http.StatusOK, nil
	}
	m.extractNodeConfigFunc = func(token, labID, nodeID string) (string, int, error) {
		return "config", http.StatusOK, nil
	}
	m.downloadLabFunc = func(token, labID string) (string, int, error) {
		return "lab:\n  title: " + labID + "\n", http.StatusOK, nil
	}
	m.stopLabFunc = func(token, labID string) (int, error) {
		return http.StatusNoContent, nil
	}
	m.wipeLabFunc = func(token, labID string) (int, error) {
		return http.StatusNoContent, nil
	}
	m.deleteLabFunc = func(token, labID string) (int, error) {
		return http.StatusNoContent, nil
	}
	m.resolveAdminIDFunc = func(token string) (string, int, error) {
		return "42", http.StatusOK, nil
	}
	m.updatePasswordFunc = func(token, userID, newPassword string) int {
		return http.StatusOK
	}
	m.forceLogoutFunc = func(token string) int {
		return http.StatusOK
	}

	return m
}

func (m *mockPlatformClient) Authenticate(ctx context.Context, username, password string) (string, int, error) {
	m.authenticateCalls = append(m.authenticateCalls, [2]string{username, password})
	return m.authenticateFunc(username, password)
}

func (m *mockPlatformClient) ListLabs(ctx context.Context, token string) ([]string, int, error) {
	m.listLabsCalls = append(m.listLabsCalls, token)
	return m.listLabsFunc(token)
}

func (m *mockPlatformClient) ListNodes(ctx context.Context, token, labID string) ([]string, int, error) {
	m.listNodesCalls = append(m.listNodesCalls, labID)
	return m.listNodesFunc(token, labID)
}

func (m *mockPlatformClient) ExtractNodeConfig(ctx context.Context, token, labID, nodeID string) (string, int, error) {
	m.extractNodeConfigCalls = append(m.extractNodeConfigCalls, [2]string{labID, nodeID})
	return m.extractNodeConfigFunc(token, labID, nodeID)
}

func (m *mockPlatformClient) DownloadLab(ctx context.Context, token, labID string) (string, int, error) {
	m.downloadLabCalls = append(m.downloadLabCalls, labID)
	return m.downloadLabFunc(token, labID)
}

func (m *mockPlatformClient) StopLab(ctx context.Context, token, labID string) (int, error) {
	m.stopLabCalls = append(m.stopLabCalls, labID)
	return m.stopLabFunc(token, labID)
}

func (m *mockPlatformClient) WipeLab(ctx context.Context, token, labID string) (int, error) {
	m.wipeLabCalls = append(m.wipeLabCalls, labID)
	return m.wipeLabFunc(token, labID)
}

func (m *mockPlatformClient) DeleteLab(ctx context.Context, token, labID string) (int, error) {
	m.deleteLabCalls = append(m.deleteLabCalls, labID)
	return m.deleteLabFunc(token, labID)
}

func (m *mockPlatformClient) ResolveAdminID(ctx context.Context, token string) (string, int, error) {
	m.resolveAdminIDCalls = append(m.resolveAdminIDCalls, token)
	return m.resolveAdminIDFunc(token)
}

func (m *mockPlatformClient) UpdatePassword(ctx context.Context, token, userID, newPassword string) int {
	m.updatePasswordCalls = append(m.updatePasswordCalls, [2]string{userID, newPassword})
	return m.updatePasswordFunc(token, userID, newPassword)
}

func (m *mockPlatformClient) ForceLogout(ctx context.Context, token string) int {
	m.forceLogoutCalls = append(m.forceLogoutCalls, token)
	return m.forceLogoutFunc(token)
}

// mockLabStore is a mock implementation of the labStore interface.
type mockLabStore struct {
	saveFunc func(labID, content string) error

	saveCalls []string
	saved     map[string]string
}

func newMockLabStore() *mockLabStore {
	m := &mockLabStore{saved: map[string]string{}}
	m.saveFunc = func(labID, content string) error {
		m.saved[labID] = content
		return nil
	}
	return m
}

func (m *mockLabStore) Save(labID, content string) error {
	m.saveCalls = append(m.saveCalls, labID)
	return m.saveFunc(labID, content)
}

func (m *mockLabStore) Path(labID string) string {
	return "labs/" + labID + ".yaml"
}

// mockNotifier records every message and reports configurable success.
type mockNotifier struct {
	sendFunc func(msg mailer.Message) bool

	messages []mailer.Message
}

func newMockNotifier() *mockNotifier {
	m := &mockNotifier{}
	m.sendFunc = func(msg mailer.Message) bool { return true }
	return m
}

func (m *mockNotifier) Send(msg mailer.Message) bool {
	m.messages = append(m.messages, msg)
	return m.sendFunc(msg)
}

// find returns the recorded messages with the given subject.
func (m *mockNotifier) find(subject string) []mailer.Message {
	var out []mailer.Message
	for _, msg := range m.messages {
		if msg.Subject == subject {
			out = append(out, msg)
		}
	}
	return out
}

// passthroughRender is a renderFunc stub that encodes its inputs so tests
// can assert on what would have been rendered.
func passthroughRender(name string, data any) (string, error) {
	return "rendered:" + name, nil
}
