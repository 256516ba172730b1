package model

// ClientConfig is the user configuration of the backend client.
type ClientConfig struct {
	// APIURL is the backend API base URL.
	APIURL string
	// Token is the API token.
	Token string
	// TokenFile is a file storing the API token.
	TokenFile string
	// Policies are the polling policies overriding the defaults per operation kind.
	Policies map[OperationKind]BackoffPolicy
}

// Policy returns the polling policy of an operation kind.
func (c ClientConfig) Policy(kind OperationKind) BackoffPolicy {
	if p, ok := c.Policies[kind]; ok {
		return p
	}
	return DefaultPolicy(kind)
}
