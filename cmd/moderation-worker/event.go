package main

import (
	"encoding/json"
	"fmt"
)

// objectEvent is the part of a GCS object-finalized notification the
// worker reads. Eventarc sends it either as the whole body (binary content
// mode) or nested under "data" (structured mode).
type objectEvent struct {
	Bucket   string            `json:"bucket"`
	Name     string            `json:"name"`
	Metadata map[string]string `json:"metadata"`
}

func (ev objectEvent) complete() bool { return ev.Bucket != "" && ev.Name != "" }

// owner reads the uploader and image kind stamped on the object at upload.
func (ev objectEvent) owner() (username, kind string) {
	return ev.Metadata["username"], ev.Metadata["type"]
}

func parseFinalizeEvent(body []byte) (objectEvent, error) {
	var msg struct {
		objectEvent
		Data *objectEvent `json:"data"`
	}
	if err := json.Unmarshal(body, &msg); err != nil {
		return objectEvent{}, fmt.Errorf("decode event body: %w", err)
	}
	if !msg.objectEvent.complete() && msg.Data != nil && msg.Data.complete() {
		return *msg.Data, nil
	}
	return msg.objectEvent, nil
}
