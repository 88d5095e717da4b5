package event

import "time"

// Context identifies which run, subtask and component an event belongs to.
type Context struct {
	RunID       string `json:"runID"`
	SubtaskID   string `json:"subtaskID"`
	EventType   string `json:"eventType"`
	Role        string `json:"role,omitempty"`
	TimeTakenMs int    `json:"timeTakenMs,omitempty"`
}

type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:   context,
		CreatedAt: time.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}
