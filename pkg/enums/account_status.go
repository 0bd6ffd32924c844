package enums

// AccountStatus captures the active/suspended state carried in the access token.
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
)

// String implements fmt.Stringer.
func (s AccountStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AccountStatus.
func (s AccountStatus) IsValid() bool {
	return s == AccountActive || s == AccountSuspended
}
