// Package model defines the core domain types for the events platform.
package model

import "time"

// EventState is the moderation state of an event.
type EventState string

const (
	StatePending   EventState = "PENDING"
	StatePublished EventState = "PUBLISHED"
	StateCanceled  EventState = "CANCELED"
	StateRejected  EventState = "REJECTED"
)

// StateAction is a requested transition on an event's state.
type StateAction string

const (
	SendToReview StateAction = "SEND_TO_REVIEW"
	CancelReview StateAction = "CANCEL_REVIEW"
	PublishEvent StateAction = "PUBLISH_EVENT"
	RejectEvent  StateAction = "REJECT_EVENT"
)

// RequestStatus is the status of a participation request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConfirmed RequestStatus = "CONFIRMED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCanceled  RequestStatus = "CANCELED"
)

// CommentCommand switches a comment subtree's visibility.
type CommentCommand string

const (
	CommentDelete  CommentCommand = "DELETE"
	CommentRestore CommentCommand = "RESTORE"
)

// CommentsSetting enables or disables commenting on an event.
type CommentsSetting string

const (
	EnableComments  CommentsSetting = "ENABLE"
	DisableComments CommentsSetting = "DISABLE"
)

// CommentScope filters an author's comments by visibility.
type CommentScope string

const (
	ShowAll     CommentScope = "ALL"
	ShowActive  CommentScope = "ACTIVE"
	ShowDeleted CommentScope = "DELETED"
)

// Event is an organizer-published event. ConfirmedRequests is a cached
// counter and must always equal the number of CONFIRMED requests for the
// event; ParticipantLimit 0 means unlimited capacity.
type Event struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Annotation        string     `json:"annotation"`
	Description       string     `json:"description"`
	CategoryID        string     `json:"category_id"`
	InitiatorID       string     `json:"initiator_id"`
	Paid              bool       `json:"paid"`
	State             EventState `json:"state"`
	ParticipantLimit  int        `json:"participant_limit"`
	RequestModeration bool       `json:"request_moderation"`
	ConfirmedRequests int        `json:"confirmed_requests"`
	CommentsDisabled  bool       `json:"comments_disabled"`
	EventDate         time.Time  `json:"event_date"`
	CreatedOn         time.Time  `json:"created_on"`
	PublishedOn       *time.Time `json:"published_on,omitempty"`
}

// Remaining returns the number of open seats, or -1 for unlimited events.
func (e *Event) Remaining() int {
	if e.ParticipantLimit == 0 {
		return -1
	}
	return e.ParticipantLimit - e.ConfirmedRequests
}

// IsFull reports whether the event has no remaining capacity.
func (e *Event) IsFull() bool {
	return e.ParticipantLimit > 0 && e.ConfirmedRequests >= e.ParticipantLimit
}

// Request is a user's participation request for an event.
type Request struct {
	ID          string        `json:"id"`
	EventID     string        `json:"event_id"`
	RequesterID string        `json:"requester_id"`
	Status      RequestStatus `json:"status"`
	Created     time.Time     `json:"created"`
}

// Comment is a node in an event's discussion tree. Comments with an empty
// ParentID are roots; the tree is walked through a derived parent index,
// never through back-pointers.
type Comment struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	AuthorID     string    `json:"author_id"`
	ParentID     string    `json:"parent_comment_id,omitempty"`
	Text         string    `json:"text"`
	Deleted      bool      `json:"deleted"`
	Edited       bool      `json:"edited"`
	CreationDate time.Time `json:"creation_date"`
	UpdateDate   time.Time `json:"update_date"`
}

// User is a directory entry. The engine only checks existence.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Category is a catalog entry events are filed under.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Hit is one recorded page view.
type Hit struct {
	ID        string    `json:"id"`
	App       string    `json:"app"`
	URI       string    `json:"uri"`
	IP        string    `json:"ip"`
	Timestamp time.Time `json:"timestamp"`
}

// ViewStats is an aggregated hit count for one (app, uri) pair.
type ViewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}
