package cache

import (
	"context"

	"github.com/spec-kit/sro-service/internal/events"
)

// Cache keys for the collection views. Reference-data collections are
// deliberately separate from lifecycle caches: a dropdown mutation must
// never invalidate a list view and vice versa.
const (
	KeyCalloutList  = "callouts:list"
	KeySROList      = "sros:list"
	KeyScheduleList = "schedules:list"

	KeyCustomers      = "reference:customers"
	KeyRigs           = "reference:rigs"
	KeyWells          = "reference:wells"
	KeyEquipmentTypes = "reference:equipment_types"
)

// CalloutDetailKey is the cache key of one callout's detail view.
func CalloutDetailKey(id string) string { return "callouts:detail:" + id }

// SRODetailKey is the cache key of one SRO's detail view.
func SRODetailKey(id string) string { return "sros:detail:" + id }

// ScheduleDetailKey is the cache key of one schedule's detail view.
func ScheduleDetailKey(id string) string { return "schedules:detail:" + id }

// KeysFor maps a changed-facts event to the exact set of caches it makes
// stale. This table is the single source of truth for invalidation scope.
func KeysFor(ev events.Event) []string {
	switch ev.Type {
	case events.EventCalloutCreated:
		return []string{KeyCalloutList}
	case events.EventCalloutEdited:
		return []string{KeyCalloutList, CalloutDetailKey(ev.Facts.CalloutID)}
	case events.EventSROGenerated:
		return []string{
			CalloutDetailKey(ev.Facts.CalloutID),
			KeyCalloutList,
			KeySROList,
		}
	case events.EventSROApproved:
		keys := []string{KeySROList, SRODetailKey(ev.Facts.SROID)}
		if ev.Facts.ScheduleCreated {
			keys = append(keys, KeyScheduleList)
		}
		return keys
	case events.EventScheduleUpdated:
		return []string{KeyScheduleList, ScheduleDetailKey(ev.Facts.ScheduleID)}
	case events.EventWellCreated:
		return []string{KeyWells}
	}
	return nil
}

// RegisterInvalidation subscribes the store to every lifecycle event type.
// The dispatcher delivers synchronously, so all keys are stale before the
// emitting transition reports success.
func RegisterInvalidation(dispatcher events.Dispatcher, store *Store) {
	types := []events.EventType{
		events.EventCalloutCreated,
		events.EventCalloutEdited,
		events.EventSROGenerated,
		events.EventSROApproved,
		events.EventScheduleUpdated,
		events.EventWellCreated,
	}
	for _, eventType := range types {
		dispatcher.Subscribe(eventType, func(ctx context.Context, ev events.Event) error {
			store.Invalidate(ctx, KeysFor(ev)...)
			return nil
		})
	}
}
