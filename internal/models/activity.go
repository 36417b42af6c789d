// internal/models/activity.go
package models

import (
	"bytes"
	"encoding/json"
)

// Activity is a point-in-time copy of one extracurricular activity.
// Name is the registry key and is not repeated in the JSON body.
type Activity struct {
	Name            string   `json:"-"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// Catalog is an ordered snapshot of the registry. It encodes as a JSON
// object keyed by activity name, preserving seed order.
type Catalog []Activity

func (c Catalog) Get(name string) (Activity, bool) {
	for _, a := range c {
		if a.Name == name {
			return a, true
		}
	}
	return Activity{}, false
}

func (c Catalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.Name)
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(a)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MessageResponse is the body of successful signup and unregister calls.
type MessageResponse struct {
	Message string `json:"message"`
}
