package collector

import (
	"errors"
	"fmt"
	"net/url"
)

// TransportError drops the query string and user info from the URL inside
// an *url.Error. Provider URLs carry API keys in the query.
func TransportError(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}

	target := "request"
	if u, perr := url.Parse(ue.URL); perr == nil {
		u.RawQuery = ""
		u.User = nil
		u.Fragment = ""
		target = u.String()
	}
	return fmt.Errorf("%s %s: %w", ue.Op, target, ue.Err)
}
