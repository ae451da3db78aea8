package model

import "time"

// NewEventRequest is the payload for creating an event.
type NewEventRequest struct {
	Title             string    `json:"title"`
	Annotation        string    `json:"annotation"`
	Description       string    `json:"description"`
	CategoryID        string    `json:"category_id"`
	Paid              bool      `json:"paid"`
	ParticipantLimit  int       `json:"participant_limit"`
	RequestModeration *bool     `json:"request_moderation,omitempty"`
	CommentsDisabled  bool      `json:"comments_disabled"`
	EventDate         time.Time `json:"event_date"`
}

// UpdateEventRequest is a partial update of an event. Nil fields are left
// untouched; StateAction, when present, is dispatched after the field
// updates apply.
type UpdateEventRequest struct {
	Title             *string      `json:"title,omitempty"`
	Annotation        *string      `json:"annotation,omitempty"`
	Description       *string      `json:"description,omitempty"`
	CategoryID        *string      `json:"category_id,omitempty"`
	Paid              *bool        `json:"paid,omitempty"`
	ParticipantLimit  *int         `json:"participant_limit,omitempty"`
	RequestModeration *bool        `json:"request_moderation,omitempty"`
	CommentsDisabled  *bool        `json:"comments_disabled,omitempty"`
	EventDate         *time.Time   `json:"event_date,omitempty"`
	StateAction       *StateAction `json:"state_action,omitempty"`
}

// StatusUpdateRequest asks the initiator to confirm or reject a batch of
// pending participation requests.
type StatusUpdateRequest struct {
	RequestIDs []string      `json:"request_ids"`
	Status     RequestStatus `json:"status"`
}

// StatusUpdateResult reports which requests a batch update confirmed and
// which it rejected.
type StatusUpdateResult struct {
	Confirmed []Request `json:"confirmed_requests"`
	Rejected  []Request `json:"rejected_requests"`
}

// NewCommentRequest carries the text of a new comment or reply.
type NewCommentRequest struct {
	Text string `json:"text"`
}

// NewUserRequest is the payload for registering a user.
type NewUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewCategoryRequest is the payload for creating a category.
type NewCategoryRequest struct {
	Name string `json:"name"`
}

// NewHitRequest records one page view in the collector.
type NewHitRequest struct {
	App       string    `json:"app"`
	URI       string    `json:"uri"`
	IP        string    `json:"ip"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
