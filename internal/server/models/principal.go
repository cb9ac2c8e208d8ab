package models

// Principal is the authentication capability of an identity record:
// credential checks plus the permission flags used for authorization.
type Principal interface {
	SetPassword(raw string) error
	CheckPassword(raw string) bool
	HasUsablePassword() bool

	IsStaffMember() bool
	IsSuperuserMember() bool
	IsActiveMember() bool
	CanAccessConsole() bool
}

var _ Principal = (*Account)(nil)
