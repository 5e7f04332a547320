// internal/app/system/limits/limits.go
package limits

// Request body size limits for the JSON endpoints.
const (
	// MaxCredentialsBody bounds /register and /login bodies.
	MaxCredentialsBody = 16 << 10 // 16 KB

	// MaxUploadBody bounds /upload bodies. The task payload is stored verbatim.
	MaxUploadBody = 1 << 20 // 1 MB
)
