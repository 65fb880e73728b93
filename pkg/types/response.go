package types

// ErrorBody is written for every failed request.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// MessageResponse confirms a mutation that has no resource to return.
type MessageResponse struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message"`
}

// ListEnvelope wraps administrative listings.
type ListEnvelope struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Data    any  `json:"data"`
}

// Message builds a plain confirmation body.
func Message(msg string) MessageResponse {
	return MessageResponse{Message: msg}
}

// SuccessMessage builds a confirmation body carrying success=true.
func SuccessMessage(msg string) MessageResponse {
	ok := true
	return MessageResponse{Success: &ok, Message: msg}
}
