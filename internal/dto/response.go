package dto

// Response is the success half of the response envelope. Token is set by
// register and login; Count by list endpoints.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Token   string      `json:"token,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

// OK wraps data in a success envelope
func OK(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// WithToken wraps data and a bearer token in a success envelope
func WithToken(data interface{}, token string) Response {
	return Response{Success: true, Data: data, Token: token}
}

// List wraps a collection and its size in a success envelope
func List(data interface{}, count int) Response {
	return Response{Success: true, Data: data, Count: &count}
}
