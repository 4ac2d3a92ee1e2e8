package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/client/client"
	"github.com/dmitrijs2005/anchor/internal/common"
)

// getPassword is swapped in tests to avoid touching the terminal.
var getPassword = GetPassword

// Register asks for a username and a password typed twice and creates the
// account on the server.
func (a *App) Register(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	if userName == "" {
		return fmt.Errorf("%w: username is required", common.ErrorValidation)
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Repeat password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := anchor.ValidatePassword(string(password), string(confirm)); err != nil {
		return err
	}

	if err := a.authService.Register(ctx, userName, password); err != nil {
		return err
	}

	a.println("Account created, you can log in now.")
	return nil
}

// Login tries the server first and falls back to the credentials cached by
// the last online login when the server cannot be reached. A fresh online
// login flushes pending actions right away.
func (a *App) Login(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	mode := ModeOnline
	err = a.authService.OnlineLogin(ctx, userName, password)
	if errors.Is(err, client.ErrUnavailable) {
		a.println("Server unavailable, trying offline login...")
		if err := a.authService.OfflineLogin(ctx, userName, password); err != nil {
			a.setMode(ModeDisabled)
			return fmt.Errorf("offline login: %w", err)
		}
		mode = ModeOffline
	} else if err != nil {
		return err
	}

	a.setMode(mode)
	a.setUser(userName, true)
	a.logger.Info(ctx, "logged in", "mode", mode)
	a.printf("Logged in (%s)\n", mode)

	if mode == ModeOnline {
		if _, err := a.syncer.Flush(ctx); err != nil {
			a.logger.Warn(ctx, "sync after login failed", "error", err)
		}
	}
	return a.afterLogin(ctx)
}

func (a *App) afterLogin(ctx context.Context) error {
	flags, err := a.onboarding.Flags(ctx)
	if err != nil {
		return err
	}
	if !flags.OnboardingComplete {
		if err := a.Onboard(ctx); err != nil {
			return err
		}
	}

	target, _, err := a.rituals.ContinueTarget(ctx)
	if err != nil {
		return err
	}
	if target != nil {
		a.printf("Continue with %q? Type 'continue'.\n", target.IntentionText)
	}
	return nil
}

// Logout forgets the session and wipes everything stored on this device,
// including actions the server has not seen yet.
func (a *App) Logout(ctx context.Context) error {
	n, err := a.syncer.Pending(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		ok, err := Confirm(a.reader, fmt.Sprintf("%d actions are not synced yet and will be lost. Log out anyway?", n), a.out)
		if err != nil || !ok {
			return err
		}
	}

	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.setUser("", false)
	a.println("Logged out")
	return nil
}
