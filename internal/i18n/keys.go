// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// Access
	KeyAccessDenied = "access.denied"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	// License requests
	KeyRequestCreated        = "request.created"
	KeyRequestUpdated        = "request.updated"
	KeyRequestDeleted        = "request.deleted"
	KeyRequestNotFound       = "request.not_found"
	KeyRequestSubmitted      = "request.submitted"
	KeyRequestStateUpdated   = "request.state_updated"
	KeyRequestStatusUpdated  = "request.status_updated"
	KeyRequestDocumentStored = "request.document_stored"

	// Transporters
	KeyTransporterCreated  = "transporter.created"
	KeyTransporterUpdated  = "transporter.updated"
	KeyTransporterDeleted  = "transporter.deleted"
	KeyTransporterNotFound = "transporter.not_found"
	KeyTransporterInUse    = "transporter.in_use"

	// Vehicles
	KeyVehicleCreated  = "vehicle.created"
	KeyVehicleUpdated  = "vehicle.updated"
	KeyVehicleDeleted  = "vehicle.deleted"
	KeyVehicleNotFound = "vehicle.not_found"
	KeyVehicleInUse    = "vehicle.in_use"

	// Users
	KeyUserNotFound = "user.not_found"
	KeyUserDeleted  = "user.deleted"
)
