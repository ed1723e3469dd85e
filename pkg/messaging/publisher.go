// Package messaging defines the event publishing contract used by the service layer.
package messaging

import (
	"context"
)

const (
	ProductsSubjectPrefix = "product."
	ProductsSubjects      = ProductsSubjectPrefix + ">"
	ProductCreatedSubject = ProductsSubjectPrefix + "created"
	ProductUpdatedSubject = ProductsSubjectPrefix + "updated"
	ProductDeletedSubject = ProductsSubjectPrefix + "deleted"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

// Identified is implemented by events carrying a unique id that brokers can use for deduplication.
type Identified interface {
	ID() string
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher drops every event. Used when messaging is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
