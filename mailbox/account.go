package mailbox

import "errors"

// Account holds the connection settings for one remote POP3 mailbox.
type Account struct {
	// Host is the name or address of the POP3 server.
	Host string

	// Port is the port to connect to. When zero, the standard port is
	// used: 995 with TLS, 110 without.
	Port int

	// Username and Password authenticate the mailbox.
	Username string
	Password string

	// TLS enables an encrypted connection.
	TLS bool
}

// port returns the configured port or the standard one for the connection
// kind.
func (a Account) port() int {
	if a.Port != 0 {
		return a.Port
	}
	if a.TLS {
		return 995
	}
	return 110
}

// validate reports the first configuration problem with the account.
func (a Account) validate() error {
	if a.Host == "" {
		return errors.New("mailbox account is missing a host")
	}
	if a.Username == "" {
		return errors.New("mailbox account is missing a username")
	}
	if a.Password == "" {
		return errors.New("mailbox account is missing a password")
	}
	return nil
}
