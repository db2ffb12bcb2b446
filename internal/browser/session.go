package browser

import (
	"context"

	"github.com/lotas/tabask/internal/firefox"
	"github.com/lotas/tabask/internal/types"
)

// Session reads the tabs of a Firefox profile's session store. It works while
// Firefox is closed but cannot switch tabs.
type Session struct {
	profile types.Profile
}

func NewSession(profile types.Profile) *Session {
	return &Session{profile: profile}
}

func (s *Session) Name() string { return "firefox:" + s.profile.Name }

func (s *Session) Tabs(ctx context.Context) ([]types.Tab, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sess, err := firefox.ReadSessionFile(s.profile.Path)
	if err != nil {
		return nil, err
	}
	return sess.CurrentWindow(), nil
}

func (s *Session) Activate(ctx context.Context, tab types.Tab) error {
	return ErrReadOnly
}
