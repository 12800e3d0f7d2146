package api

// messageResponse is returned for skipped and delivered events.
type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse is returned for failed deliveries and rejected requests.
type errorResponse struct {
	Error string `json:"error"`
}

const skipMessage = "Environment not allowed. Skipping notification."
