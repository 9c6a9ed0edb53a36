package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types published by task and timer operations.
const (
	EventTypeTaskCreated       = "task.created"
	EventTypeTaskMoved         = "task.moved"
	EventTypeTaskStatusChanged = "task.status_changed"
	EventTypeTaskDeleted       = "task.deleted"
	EventTypeTimerStarted      = "timer.started"
	EventTypeTimerStopped      = "timer.stopped"
	EventTypeCommissionUpdated = "commission.updated"
)

// TopicAll receives every event regardless of project.
const TopicAll = "*"

// RedisChannel is the pub/sub channel events are mirrored to when Redis is enabled.
const RedisChannel = "swhouse:events"

// Event is a live notification for dashboards. It is not persisted.
type Event struct {
	ID        uuid.UUID   `json:"id"`
	Type      string      `json:"type"`
	ProjectID *uuid.UUID  `json:"projectId,omitempty"`
	TaskID    *uuid.UUID  `json:"taskId,omitempty"`
	UserID    *uuid.UUID  `json:"userId,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Origin    string      `json:"origin,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

// ProjectTopic is the topic for events scoped to a project.
func ProjectTopic(projectID uuid.UUID) string {
	return "project:" + projectID.String()
}

// Topics lists every topic the event should be delivered to.
func (e *Event) Topics() []string {
	topics := []string{TopicAll}
	if e.ProjectID != nil {
		topics = append(topics, ProjectTopic(*e.ProjectID))
	}
	return topics
}
