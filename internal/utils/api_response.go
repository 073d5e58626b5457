package utils

import "time"

type SuccessResponse struct {
	Success bool  `json:"success"`
	Data    any   `json:"data"`
	Meta    *Meta `json:"meta,omitempty"`
	Summary any   `json:"summary,omitempty"`
}

type ErrorResponse struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Meta struct {
	Timestamp        time.Time `json:"timestamp"`
	Total            *int      `json:"total,omitempty"`
	Page             *int      `json:"page,omitempty"`
	PageSize         *int      `json:"page_size,omitempty"`
	AvailableCount   *int      `json:"available_count,omitempty"`
	UnavailableCount *int      `json:"unavailable_count,omitempty"`
}

func CreateErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: APIError{
			Code:    code,
			Message: message,
		},
	}
}

func CreateSuccessResponse(data any) SuccessResponse {
	return SuccessResponse{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Timestamp: time.Now(),
		},
	}
}

// CreateListResponse builds a paginated success envelope with availability
// counters in the metadata block.
func CreateListResponse(data any, total, page, pageSize, available, unavailable int, summary any) SuccessResponse {
	return SuccessResponse{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Timestamp:        time.Now(),
			Total:            &total,
			Page:             &page,
			PageSize:         &pageSize,
			AvailableCount:   &available,
			UnavailableCount: &unavailable,
		},
		Summary: summary,
	}
}
