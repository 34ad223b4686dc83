package h2o

import (
	"errors"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// ErrMappingToEventMetadataFailed is returned when metadata conversion fails.
var ErrMappingToEventMetadataFailed = errors.New("mapping to event metadata failed")

// MessageID represents a unique message identifier.
type MessageID = string

// CausationID represents the ID of the pairing transaction that caused this event.
type CausationID = string

// CorrelationID represents the ID correlating all events of one simulation run.
type CorrelationID = string

// EventMetadata contains event tracking information.
type EventMetadata struct {
	MessageID     MessageID
	CausationID   CausationID `json:",omitempty"`
	CorrelationID CorrelationID
}

// BuildEventMetadata creates EventMetadata from UUID values.
// A zero causationID is left empty because only molecule events are caused by a pairing transaction.
func BuildEventMetadata(messageID uuid.UUID, causationID uuid.UUID, correlationID uuid.UUID) EventMetadata {
	metadata := EventMetadata{
		MessageID:     messageID.String(),
		CorrelationID: correlationID.String(),
	}

	if causationID != uuid.Nil {
		metadata.CausationID = causationID.String()
	}

	return metadata
}

// EventMetadataFrom extracts EventMetadata from a StorableEvent.
func EventMetadataFrom(storableEvent StorableEvent) (EventMetadata, error) {
	metadata := new(EventMetadata)
	err := jsoniter.ConfigFastest.Unmarshal(storableEvent.MetadataJSON, metadata)
	if err != nil {
		return EventMetadata{}, errors.Join(ErrMappingToEventMetadataFailed, err)
	}

	return *metadata, nil
}
