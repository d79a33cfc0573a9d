package model

type Principal struct {
	Subject string
	Role    string
}

func (p Principal) IsAnonymous() bool {
	return p.Subject == ""
}
