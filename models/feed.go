package models

// FeedSnapshot is the view of a feed session returned to the mobile client
// after every operation.
type FeedSnapshot struct {
	SessionID string      `json:"sessionId"`
	State     string      `json:"state"`
	Message   string      `json:"message,omitempty"`
	Current   *Restaurant `json:"current"`
	Cursor    int         `json:"cursor"`
	BufferLen int         `json:"bufferLen"`
	Loading   bool        `json:"loading"`
}
