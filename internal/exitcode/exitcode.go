// Package exitcode defines the process exit codes taskdesk returns.
package exitcode

// Exit codes. Scripts may rely on these values.
const (
	Success = 0

	// UserError covers bad arguments, failed validation and commands
	// outside the caller's role.
	UserError = 1

	// AuthError covers a missing or rejected session and an unusable role.
	AuthError = 2

	// BackendError covers backend, network and local storage failures.
	BackendError = 3
)

// Name returns a short label for code, used in logs.
func Name(code int) string {
	switch code {
	case Success:
		return "success"
	case UserError:
		return "user"
	case AuthError:
		return "auth"
	case BackendError:
		return "backend"
	}
	return "unknown"
}
