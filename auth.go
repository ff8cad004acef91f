package rango

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
)

const (
	maxUsernameLen = 150
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt input limit
)

func (a *App) handleRegisterForm(c echo.Context) error {
	return Render(c, a.Views.Register(viewer(c), RegisterForm{}, false))
}

func (a *App) handleRegister(c echo.Context) error {
	form := RegisterForm{
		Username: strings.TrimSpace(c.FormValue("username")),
		Email:    strings.TrimSpace(c.FormValue("email")),
		Website:  NormalizeURL(c.FormValue("website")),
	}
	password := c.FormValue("password")
	form.Errors = validateRegistration(form, password)
	if len(form.Errors) == 0 {
		u, err := a.Store.CreateUser(User{Username: form.Username, Email: form.Email, Website: form.Website}, password)
		switch {
		case errors.Is(err, ErrDuplicate):
			form.Errors = map[string]string{"username": "A user with that username already exists."}
		case err != nil:
			return err
		default:
			c.Logger().Infof("user registered: %s", u.Username)
			return Render(c, a.Views.Register(viewer(c), RegisterForm{Username: u.Username}, true))
		}
	}
	return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.Register(viewer(c), form, false))
}

func validateRegistration(f RegisterForm, password string) map[string]string {
	errs := map[string]string{}
	switch {
	case f.Username == "":
		errs["username"] = "Please choose a username."
	case utf8.RuneCountInString(f.Username) > maxUsernameLen:
		errs["username"] = "Username is too long."
	case strings.ContainsAny(f.Username, " \t\r\n"):
		errs["username"] = "Username may not contain spaces."
	}
	if f.Email != "" && !strings.Contains(f.Email, "@") {
		errs["email"] = "Enter a valid email address."
	}
	switch {
	case len(password) < minPasswordLen:
		errs["password"] = "Password must be at least 8 characters."
	case len(password) > maxPasswordLen:
		errs["password"] = "Password is too long."
	}
	if f.Website != "" && !ValidLinkURL(f.Website) {
		errs["website"] = "Enter a valid URL."
	}
	return errs
}

func (a *App) handleLoginForm(c echo.Context) error {
	if IsAuthenticated(c) {
		return c.Redirect(http.StatusSeeOther, "/rango/")
	}
	return Render(c, a.Views.Login(viewer(c), ""))
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	u, err := a.Store.Authenticate(c.FormValue("username"), c.FormValue("password"))
	if errors.Is(err, ErrInvalidCredentials) {
		a.loginLimiter.Record(ip)
		return RenderStatus(c, http.StatusUnauthorized, a.Views.Login(viewer(c), "Invalid login details supplied."))
	}
	if err != nil {
		return err
	}
	a.loginLimiter.Reset(ip)
	if err := setUserSession(c, u); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/rango/")
}

func (a *App) handleLogout(c echo.Context) error {
	if err := clearUserSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/rango/")
}

func (a *App) handleRestricted(c echo.Context) error {
	return Render(c, a.Views.Restricted(viewer(c)))
}
