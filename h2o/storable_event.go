package h2o

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var ErrInvalidPayloadJSON = errors.New("payload json is not valid")
var ErrInvalidMetadataJSON = errors.New("metadata json is not valid")

// StorableEvents is an alias type for a slice of StorableEvent
type StorableEvents = []StorableEvent

// StorableEvent is a DTO (data transfer object) used by the journal to record events and query them back.
//
// It is built on scalars to be completely agnostic of the Event type used by the protocol.
//
// While its properties are exported, it should only be constructed with the supplied factory methods:
//   - BuildStorableEvent
//   - BuildStorableEventWithEmptyMetadata
//   - StorableEventFrom
type StorableEvent struct {
	EventType      EventTypeString
	SequenceNumber LineNumberUint
	OccurredAt     time.Time
	PayloadJSON    []byte
	MetadataJSON   []byte
}

// BuildStorableEvent is a factory method for StorableEvent.
//
// It populates the StorableEvent with the given scalar input.
// Returns an error if payloadJSON or metadataJSON are not valid JSON.
func BuildStorableEvent(
	eventType EventTypeString,
	sequenceNumber LineNumberUint,
	occurredAt time.Time,
	payloadJSON []byte,
	metadataJSON []byte,
) (StorableEvent, error) {

	if !jsoniter.ConfigFastest.Valid(payloadJSON) {
		return StorableEvent{}, ErrInvalidPayloadJSON
	}

	if !jsoniter.ConfigFastest.Valid(metadataJSON) {
		return StorableEvent{}, ErrInvalidMetadataJSON
	}

	return StorableEvent{
		EventType:      eventType,
		SequenceNumber: sequenceNumber,
		OccurredAt:     occurredAt,
		PayloadJSON:    payloadJSON,
		MetadataJSON:   metadataJSON,
	}, nil
}

// BuildStorableEventWithEmptyMetadata is a factory method for StorableEvent.
//
// It populates the StorableEvent with the given scalar input and creates valid empty JSON for MetadataJSON.
// Returns an error if payloadJSON is not valid JSON.
func BuildStorableEventWithEmptyMetadata(
	eventType EventTypeString,
	sequenceNumber LineNumberUint,
	occurredAt time.Time,
	payloadJSON []byte,
) (StorableEvent, error) {

	return BuildStorableEvent(eventType, sequenceNumber, occurredAt, payloadJSON, []byte("{}"))
}
