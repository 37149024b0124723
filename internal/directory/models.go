package directory

import "time"

// Club is a student organisation. Members holds user IDs; MemberCount is derived.
type Club struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image,omitempty"`
	Category    string    `json:"category"`
	MeetingTime string    `json:"meeting_time"`
	Location    string    `json:"location"`
	Email       string    `json:"email"`
	AdminID     string    `json:"admin,omitempty"`
	Members     []string  `json:"members"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Event belongs to exactly one club and is deleted with it.
type Event struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Date          time.Time `json:"date"`
	Location      string    `json:"location"`
	ClubID        string    `json:"club"`
	CreatedBy     string    `json:"created_by,omitempty"`
	Attendees     []string  `json:"attendees"`
	AttendeeCount int       `json:"attendee_count"`
}

// ClubInput creates a club. Pointer fields in ClubPatch mark which fields to change.
type ClubInput struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description" binding:"required"`
	Image       string `json:"image" binding:"omitempty,url"`
	Category    string `json:"category" binding:"required,max=100"`
	MeetingTime string `json:"meeting_time" binding:"required,max=100"`
	Location    string `json:"location" binding:"required,max=200"`
	Email       string `json:"email" binding:"required,email"`
}

type ClubPatch struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	Image       *string `json:"image" binding:"omitempty,url"`
	Category    *string `json:"category" binding:"omitempty,max=100"`
	MeetingTime *string `json:"meeting_time" binding:"omitempty,max=100"`
	Location    *string `json:"location" binding:"omitempty,max=200"`
	Email       *string `json:"email" binding:"omitempty,email"`
}

type EventInput struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	Location    string    `json:"location" binding:"required,max=200"`
	ClubID      string    `json:"club" binding:"required"`
}

type EventPatch struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	Location    *string    `json:"location" binding:"omitempty,max=200"`
	ClubID      *string    `json:"club"`
}

// ClubFilter narrows ListClubs; MemberID keeps clubs the user belongs to.
type ClubFilter struct {
	MemberID string
	AdminID  string
}

// EventFilter narrows ListEvents; AttendeeID keeps events the user registered for.
type EventFilter struct {
	AttendeeID string
	ClubID     string
	CreatedBy  string
}
