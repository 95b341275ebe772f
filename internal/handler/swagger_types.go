package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// SignUpRequest represents the sign-up request body.
type SignUpRequest struct {
	Name     string `json:"name" example:"Asha Rao"`
	Email    string `json:"email" example:"asha@example.com"`
	Password string `json:"password" example:"securepassword123"`
}

// LogInRequest represents the login request body.
type LogInRequest struct {
	Email    string `json:"email" example:"asha@example.com"`
	Password string `json:"password" example:"securepassword123"`
}

// RegionRequest represents the region selection request body.
type RegionRequest struct {
	CityTier string `json:"cityTier" binding:"required" example:"Tier-2"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
