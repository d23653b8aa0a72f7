package domain

// Handle identifies one open connection. Two tabs of the same user hold
// two distinct handles.
type Handle string

// Session is the live binding of one admitted connection to a verified
// user and the single group it was admitted to. It is immutable after
// admission and destroyed exactly once, on disconnect.
type Session struct {
	Handle   Handle
	UserID   string
	Username string
	GroupID  GroupID
}
