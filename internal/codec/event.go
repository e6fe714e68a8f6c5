package codec

import (
	"fmt"

	"extrinsicScope/internal/model"
)

// EventRecord is one event emitted in a block.
type EventRecord struct {
	// ExtrinsicIndex is nil for initialization and finalization events.
	ExtrinsicIndex *uint32
	Path           model.EventPath
	Params         Value
}

// AppliesTo reports whether the event was emitted by extrinsic index.
func (r EventRecord) AppliesTo(index uint32) bool {
	return r.ExtrinsicIndex != nil && *r.ExtrinsicIndex == index
}

// Is reports whether the event has the given path.
func (r EventRecord) Is(path model.EventPath) bool {
	return r.Path == path
}

// Param returns the i-th positional parameter, falling back to named fields.
func (r EventRecord) Param(i int, names ...string) Value {
	if positional := r.Params.Index(i); !positional.IsNull() {
		return positional
	}
	return r.Params.FirstField(names...)
}

// DecodeEventRecords decodes the events storage value.
func DecodeEventRecords(f Factory, data []byte) ([]EventRecord, error) {
	if len(data) == 0 {
		return nil, nil
	}

	value, err := f.Decode(data, TypeEventRecords)
	if err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	items, err := value.List()
	if err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	records := make([]EventRecord, 0, len(items))
	for i, item := range items {
		record, err := eventRecordFromValue(item)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func eventRecordFromValue(v Value) (EventRecord, error) {
	event := v.Field("event")
	module, err := event.FirstField("module", "module_name", "section").Str()
	if err != nil {
		return EventRecord{}, fmt.Errorf("event module: %w", err)
	}
	name, err := event.FirstField("event", "event_name", "method").Str()
	if err != nil {
		return EventRecord{}, fmt.Errorf("event name: %w", err)
	}

	record := EventRecord{
		Path:   model.NewEventPath(module, name),
		Params: event.FirstField("params", "data"),
	}

	phase, inner, err := v.Field("phase").Variant()
	if err != nil {
		return EventRecord{}, fmt.Errorf("event phase: %w", err)
	}
	if phase == "ApplyExtrinsic" {
		index, err := inner.Uint32()
		if err != nil {
			return EventRecord{}, fmt.Errorf("event phase index: %w", err)
		}
		record.ExtrinsicIndex = &index
	}
	return record, nil
}

// FilterByExtrinsic returns the events emitted by extrinsic index, in order.
func FilterByExtrinsic(records []EventRecord, index uint32) []EventRecord {
	out := make([]EventRecord, 0, 4)
	for _, record := range records {
		if record.AppliesTo(index) {
			out = append(out, record)
		}
	}
	return out
}
