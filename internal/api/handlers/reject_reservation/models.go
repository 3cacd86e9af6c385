package reject_reservation

// RejectReservationRequest HTTP request model
type RejectReservationRequest struct {
	RejectionReason string `json:"rejectionReason" validate:"required,max=500"`
}
