package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
	"github.com/dmitrijs2005/shopkeeper/internal/common"
)

// Login prompts for an email or phone and a password and starts a session.
// The password buffer is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Email or phone", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Login(ctx, identifier, string(password)); err != nil {
		return err
	}

	a.resetScreens()
	fmt.Fprintf(a.out, "Welcome, %s!\n", a.session.User().DisplayName())
	return nil
}

// Register prompts for the profile and password and creates an account.
// After a failure the profile fields typed so far are offered as defaults
// on the next attempt.
func (a *App) Register(ctx context.Context) error {
	prev := a.pendingRegistration
	values, err := promptFields(a.reader, a.out, []fieldPrompt{
		{Name: "first_name", Label: "First name", Current: prev.FirstName},
		{Name: "last_name", Label: "Last name", Current: prev.LastName},
		{Name: "email", Label: "Email", Current: prev.Email},
		{Name: "phone", Label: "Phone", Current: prev.Phone},
	})
	if err != nil {
		return err
	}

	req := prev
	for name, v := range values {
		switch name {
		case "first_name":
			req.FirstName = v
		case "last_name":
			req.LastName = v
		case "email":
			req.Email = v
		case "phone":
			req.Phone = v
		}
	}

	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirmation, err := getPassword("Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirmation)

	req.Password = string(password)
	req.PasswordConfirmation = string(confirmation)

	if err := a.session.Register(ctx, req); err != nil {
		req.Password, req.PasswordConfirmation = "", ""
		a.pendingRegistration = req
		return err
	}

	a.pendingRegistration = models.RegisterRequest{}
	a.resetScreens()
	fmt.Fprintf(a.out, "Account created. Welcome, %s!\n", a.session.User().DisplayName())
	return nil
}

// Logout ends the session. Local state is cleared even when the backend
// cannot be reached.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	a.session.Logout(ctx)
	a.resetScreens()
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	u := a.session.User()
	if u == nil {
		fmt.Fprintln(a.out, "Not logged in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s (id %d)\n", u.DisplayName(), u.ID)
	if u.Email != "" {
		fmt.Fprintf(a.out, "  email: %s\n", u.Email)
	}
	if u.Phone != "" {
		fmt.Fprintf(a.out, "  phone: %s\n", u.Phone)
	}
	if u.Role != "" {
		fmt.Fprintf(a.out, "  role:  %s\n", u.Role)
	}
	return nil
}
