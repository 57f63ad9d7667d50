package handler

const (
	ErrTimeout        = "request timed out"
	ErrInvalidBody    = "invalid request body"
	ErrInvalidAccount = "invalid account public key"
	ErrInvalidData    = "data must be base64"
)

type errorResponse struct {
	Error string `json:"error"`
}
