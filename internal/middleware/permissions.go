package middleware

// Operation names one API action for permission lookup.
type Operation string

const (
	OpUserCreate   Operation = "user.create"
	OpUserLogin    Operation = "user.login"
	OpUserList     Operation = "user.list"
	OpUserRetrieve Operation = "user.retrieve"
	OpUserUpdate   Operation = "user.update"
	OpUserDelete   Operation = "user.delete"
	OpReportDay    Operation = "report.day"
	OpReportMonth  Operation = "report.month"
)

// Capability is what a caller must hold to run an operation.
type Capability int

const (
	IsAuthenticated Capability = iota
	AllowAny
)

func (c Capability) String() string {
	switch c {
	case AllowAny:
		return "allow_any"
	case IsAuthenticated:
		return "is_authenticated"
	default:
		return "unknown"
	}
}

var operationCapabilities = map[Operation]Capability{
	OpUserCreate:   AllowAny,
	OpUserLogin:    AllowAny,
	OpUserList:     IsAuthenticated,
	OpUserRetrieve: IsAuthenticated,
	OpUserUpdate:   IsAuthenticated,
	OpUserDelete:   IsAuthenticated,
	OpReportDay:    IsAuthenticated,
	OpReportMonth:  IsAuthenticated,
}

// RequiredCapability looks up op. Operations missing from the table require authentication.
func RequiredCapability(op Operation) Capability {
	if c, ok := operationCapabilities[op]; ok {
		return c
	}
	return IsAuthenticated
}
