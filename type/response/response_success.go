package response

type SuccessResponse struct {
	Success bool    `json:"success"`
	Message *string `json:"message,omitempty"`
	Data    any     `json:"data,omitempty"`
}

// Success builds the success envelope. A non-string msg is treated as the data.
func Success(msg any, data ...any) *SuccessResponse {
	response := &SuccessResponse{Success: true}

	message, ok := msg.(string)
	if !ok {
		response.Data = msg
		return response
	}

	response.Message = &message
	if len(data) > 0 {
		response.Data = data[0]
	}
	return response
}
