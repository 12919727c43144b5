package handler

const (
	errInternalServer   = "Internal server error"
	errValidationFailed = "Validation failed"
	errUnauthorized     = "Unauthorized"
	errUserExists       = "User with this email already exists"
	errProfileNotFound  = "Profile not found"
	errProfileExists    = "Profile already exists"
	errFetchProfile     = "Failed to fetch profile"
	errCreateProfile    = "Failed to create profile"
	errUpdateProfile    = "Failed to update profile"
	msgLoggedOut        = "Logged out successfully"
)
