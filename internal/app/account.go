package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/pders01/kn/internal/debuglog"
	"github.com/pders01/kn/internal/kilonova"
	"github.com/pders01/kn/internal/tui"
	"github.com/pders01/kn/internal/waiter"
)

// Login asks for credentials and stores the session token.
func (a *App) Login(ctx context.Context) error {
	user, pass, err := a.credentials()
	if err != nil {
		return err
	}

	w := waiter.Start(a.out, tui.MsgLoggingIn)
	token, err := a.client.Login(ctx, user, pass)
	w.Stop()
	if err != nil {
		return err
	}

	if err := a.store.SetToken(token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	a.println(tui.StatusSuccess, tui.MsgLoggedInAs(user))
	return nil
}

// Logout ends the session on the server and forgets the token. The token
// is forgotten even when the server already considers it invalid.
func (a *App) Logout(ctx context.Context) error {
	token, err := a.token()
	if err != nil {
		return err
	}

	if err := a.client.Logout(ctx, token); err != nil && !errors.Is(err, kilonova.ErrUnauthorized) {
		return err
	}
	if err := a.store.DeleteToken(); err != nil {
		return fmt.Errorf("forgetting token: %w", err)
	}
	a.println(tui.StatusSuccess, tui.MsgLoggedOut)
	return nil
}

// Me prints the name of the logged in user.
func (a *App) Me(ctx context.Context) error {
	token, err := a.token()
	if err != nil {
		return err
	}

	w := waiter.Start(a.out, tui.MsgCheckingServer)
	user, err := a.client.Self(ctx, token)
	w.Stop()
	if err != nil {
		return authError(err)
	}
	a.println(tui.StatusSuccess, tui.MsgLoggedInAs(user.Name))
	return nil
}

// Start shows the banner, checks that the site is up and extends the
// session of a logged in user.
func (a *App) Start(ctx context.Context, version string) error {
	tui.ShowBanner(a.out, version)

	w := waiter.Start(a.out, tui.MsgCheckingServer)
	reachable, err := a.client.Ping(ctx)
	w.Stop()
	if err != nil {
		debuglog.Warnf("ping: %v", err)
	}
	if reachable {
		a.println(tui.StatusSuccess, tui.MsgServerStatus(true))
	} else {
		a.println(tui.StatusError, tui.MsgServerStatus(false))
		return nil
	}

	token, err := a.token()
	if errors.Is(err, ErrNotLoggedIn) {
		a.println(tui.StatusWarn, tui.MsgNotLoggedIn)
		return nil
	}
	if err != nil {
		return err
	}

	user, err := a.client.Self(ctx, token)
	if err != nil {
		if errors.Is(err, kilonova.ErrUnauthorized) {
			a.println(tui.StatusWarn, tui.MsgNotLoggedIn)
			return nil
		}
		return err
	}

	if err := a.client.ExtendSession(ctx, token); err != nil {
		a.println(tui.StatusWarn, tui.MsgSessionNotExtended(err))
	} else {
		a.println(tui.StatusSuccess, tui.MsgSessionExtended)
	}
	a.println(tui.StatusSuccess, tui.MsgLoggedInAs(user.Name))
	return nil
}
