package model

// Identity is the user record the backend returns from login and whois.
type Identity struct {
	ID       int    `json:"id,omitempty"`
	Username string `json:"username"`
}

// Credentials are only held for the duration of a single request.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Account struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}
