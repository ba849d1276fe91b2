package model

// PermissionCheck answers whether a mutation is currently allowed.
type PermissionCheck struct {
	Allowed bool
	Reason  string // set when denied
}

func Allow() PermissionCheck { return PermissionCheck{Allowed: true} }

func Deny(reason string) PermissionCheck {
	return PermissionCheck{Allowed: false, Reason: reason}
}
