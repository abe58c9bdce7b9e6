package errs

// Sentinels shared by the usecase layer and the transports. Callers match them with Is.
var (
	// Lookup
	ErrReservationNotFound = New("reservation not found")

	// Lifecycle: no-op failures, the reservation is left untouched
	ErrInvalidTransition = New("invalid reservation transition")
	ErrNoTableAvailable  = New("no table available")
	ErrOutsideCheckIn    = New("outside check-in window")

	// Allocation lost a race against another writer for the same table
	ErrBookingConflict = New("booking conflict")

	// Persistence is unavailable; the caller may retry
	ErrStoreUnavailable = New("reservation store unavailable")

	ErrLockUnavailable = New("date lock unavailable")
)
