package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type ListEnvelope struct {
	Data  any `json:"data"`
	Total int `json:"total"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
