package shared

// Asynq task types
const (
	TypePromoteOverdueLoans = "loan:promote_overdue"
)

// Asynq queue names
const (
	QueueHigh    = "high"
	QueueDefault = "default"
	QueueLow     = "low"
)

// Roles carried in JWT claims
const (
	RoleMember    = "member"
	RoleLibrarian = "librarian"
)
