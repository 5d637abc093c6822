package errors

// Error code constants returned in the JSON error body.
// Format: CATEGORY_SPECIFIC_DETAIL. The admin frontend maps these to
// user-facing messages.

const (
	// Validation (VALIDATION_)
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // malformed request body
	ValidationRequired     = "VALIDATION_REQUIRED"      // missing required field
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // malformed identifier

	// Stores (STORE_)
	StoreNotFound     = "STORE_NOT_FOUND"      // unknown store id
	StoreCodeExists   = "STORE_CODE_EXISTS"    // store code already taken
	StoreCodeRequired = "STORE_CODE_REQUIRED"  // code/name missing on create

	// Equipment (EQUIPMENT_)
	EquipmentNotFound     = "EQUIPMENT_NOT_FOUND"      // unknown equipment id
	EquipmentCodeConflict = "EQUIPMENT_CODE_CONFLICT"  // generated code collided

	// Generic resources (RESOURCE_)
	ResourceNotFound = "RESOURCE_NOT_FOUND"
	ResourceConflict = "RESOURCE_CONFLICT"

	// Internal (INTERNAL_)
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
)
