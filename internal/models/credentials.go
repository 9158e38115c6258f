package models

// Credentials holds a login attempt. The password is kept as a byte
// slice so it can be wiped once verification completes.
type Credentials struct {
	Username string
	Password []byte
}

// NewCredentials copies the password into a fresh buffer owned by Credentials.
func NewCredentials(username, password string) Credentials {
	return Credentials{
		Username: username,
		Password: []byte(password),
	}
}

// Wipe zeroes the password buffer.
func (c *Credentials) Wipe() {
	for i := range c.Password {
		c.Password[i] = 0
	}
	c.Password = nil
}

// String redacts the password.
func (c Credentials) String() string {
	return "Credentials{Username: " + c.Username + ", Password: [REDACTED]}"
}

// GoString redacts the password for %#v.
func (c Credentials) GoString() string {
	return c.String()
}
