package cli

import (
	"context"
	"errors"
	"net/url"

	"github.com/aussiebroadwan/lobby/pkg/lobbysdk"
)

// describe turns an error into a line for the user.
func describe(err error) string {
	var (
		domainErr *lobbysdk.DomainError
		loginErr  *lobbysdk.LoginFailedError
		urlErr    *url.Error
	)

	switch {
	case errors.As(err, &loginErr):
		if loginErr.Msg == lobbysdk.DefaultLoginMessage {
			return loginErr.Msg
		}
		return "login failed: " + loginErr.Msg
	case errors.Is(err, lobbysdk.ErrUnauthorized):
		return "your session has expired, please log in again"
	case errors.As(err, &domainErr):
		return domainErr.Msg
	case errors.Is(err, context.DeadlineExceeded):
		return "the lobby service did not answer in time"
	case errors.As(err, &urlErr):
		return "could not reach the lobby service"
	default:
		return err.Error()
	}
}
