package h2o

import (
	"errors"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// ErrMappingToStorableEventFailed is returned when event serialization fails.
var ErrMappingToStorableEventFailed = errors.New("mapping to storable event failed")

// ErrMappingToEventFailed is returned when a StorableEvent can't be converted back to an Event.
var ErrMappingToEventFailed = errors.New("mapping to event failed")

// eventPayload is the JSON shape of an Event. Its keys are the ones usable in Filter predicates.
type eventPayload struct {
	Kind     string
	AtomID   AtomIDUint
	Molecule MoleculeUint `json:",omitempty"`
	Text     string
}

// StorableEventFrom converts an Event and EventMetadata to a StorableEvent with the given line number.
func StorableEventFrom(event Event, sequenceNumber LineNumberUint, metadata EventMetadata) (StorableEvent, error) {
	payloadJSON, err := jsoniter.ConfigFastest.Marshal(eventPayload{
		Kind:     event.Atom.Kind.Letter(),
		AtomID:   event.Atom.ID,
		Molecule: event.Molecule,
		Text:     event.Text(),
	})
	if err != nil {
		return StorableEvent{}, errors.Join(ErrMappingToStorableEventFailed, err)
	}

	metadataJSON, err := jsoniter.ConfigFastest.Marshal(metadata)
	if err != nil {
		return StorableEvent{}, errors.Join(ErrMappingToStorableEventFailed, err)
	}

	storableEvent, err := BuildStorableEvent(event.EventType, sequenceNumber, event.OccurredAt, payloadJSON, metadataJSON)
	if err != nil {
		return StorableEvent{}, errors.Join(ErrMappingToStorableEventFailed, err)
	}

	return storableEvent, nil
}

// EventFrom converts a StorableEvent back to the Event it was built from.
// The reservation is restored from the CausationID of the metadata.
func EventFrom(storableEvent StorableEvent) (Event, error) {
	payload := new(eventPayload)
	if err := jsoniter.ConfigFastest.Unmarshal(storableEvent.PayloadJSON, payload); err != nil {
		return Event{}, errors.Join(ErrMappingToEventFailed, err)
	}

	kind, ok := KindFromLetter(payload.Kind)
	if !ok {
		return Event{}, errors.Join(ErrMappingToEventFailed, errors.New("unknown atom kind: "+payload.Kind))
	}

	metadata, err := EventMetadataFrom(storableEvent)
	if err != nil {
		return Event{}, errors.Join(ErrMappingToEventFailed, err)
	}

	reservation := uuid.Nil
	if metadata.CausationID != "" {
		reservation, err = uuid.Parse(metadata.CausationID)
		if err != nil {
			return Event{}, errors.Join(ErrMappingToEventFailed, err)
		}
	}

	return Event{
		EventType:   storableEvent.EventType,
		Atom:        BuildAtom(kind, payload.AtomID),
		Molecule:    payload.Molecule,
		Reservation: reservation,
		OccurredAt:  storableEvent.OccurredAt,
	}, nil
}

// EventsFrom converts all StorableEvents, stopping at the first failure.
func EventsFrom(storableEvents StorableEvents) (Events, error) {
	events := make(Events, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		event, err := EventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		events = append(events, event)
	}

	return events, nil
}
