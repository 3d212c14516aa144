package main

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

type DefaultLocationJSON struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ConfigResponse tells clients how the server is set up.
type ConfigResponse struct {
	DevMode         bool                `json:"dev_mode"`
	DefaultLocation DefaultLocationJSON `json:"default_location"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
