package cmlapi

import (
	"context"
	"fmt"
	"net/http"
)

// attempt is one step of an ordered fallback chain. The chain runner
// issues the request, stops with success when the status is in accept,
// moves to the next step when the status is in next (an empty next means
// any unaccepted status falls through), and otherwise stops with the
// observed status.
type attempt struct {
	method string
	path   string
	body   any
	accept []int
	next   []int
}

// runChain evaluates attempts in order and returns the status of the
// chain. The first accepted status short-circuits; when ok is non-zero it
// replaces the accepted status so callers see one well-known success
// value. When every attempt falls through, the last observed status is
// returned.
func (c *Client) runChain(ctx context.Context, token string, chain []attempt, ok int) int {
	last := 0
	for _, a := range chain {
		_, status, err := c.do(ctx, identityTimeout, a.method, a.path, token, a.body)
		if err != nil {
			c.log.Warn().Str("method", a.method).Str("path", a.path).Err(err).Msg("fallback attempt failed")
		}
		last = status
		if statusIn(status, a.accept) {
			if ok != 0 {
				return ok
			}
			return status
		}
		if len(a.next) > 0 && !statusIn(status, a.next) {
			return status
		}
	}
	return last
}

func statusIn(status int, set []int) bool {
	for _, s := range set {
		if s == status {
			return true
		}
	}
	return false
}

// UpdatePassword rotates a user's password. The controller accepts an
// empty old password for admin accounts, so only the new one is sent.
// Some deployments answer the documented slash-less user URL with 404 and
// only accept the trailing-slash form; that exact case is retried once.
// The status of the last call made is returned.
func (c *Client) UpdatePassword(ctx context.Context, token, userID, newPassword string) int {
	body := map[string]map[string]string{
		"password": {"old_password": "", "new_password": newPassword},
	}
	path := fmt.Sprintf("users/%s", userID)
	status := c.runChain(ctx, token, []attempt{
		{method: http.MethodPatch, path: path, body: body, accept: []int{http.StatusOK}, next: []int{http.StatusNotFound}},
		{method: http.MethodPatch, path: path + "/", body: body, accept: []int{http.StatusOK}},
	}, 0)
	c.log.Info().Str("user", userID).Int("status", status).Msg("UpdatePassword")
	return status
}

// ForceLogout clears every active session on the controller. The logout
// endpoint varies between controller versions, so known variants are
// tried in order until one answers 200 or 204; success is normalized to
// 200. When every variant fails, the last raw status is returned.
func (c *Client) ForceLogout(ctx context.Context, token string) int {
	accepted := []int{http.StatusOK, http.StatusNoContent}
	status := c.runChain(ctx, token, []attempt{
		{method: http.MethodDelete, path: "logout?clear_all_sessions=true", accept: accepted},
		{method: http.MethodPost, path: "logout", body: map[string]bool{"clear_all_sessions": true}, accept: accepted},
		{method: http.MethodPost, path: "logout", accept: accepted},
		{method: http.MethodPost, path: "users/logout", accept: accepted},
	}, http.StatusOK)
	c.log.Info().Int("status", status).Msg("ForceLogout")
	return status
}
