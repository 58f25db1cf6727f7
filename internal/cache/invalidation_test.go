package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/sro-service/internal/cache"
	"github.com/spec-kit/sro-service/internal/events"
)

func TestKeysForCoversEveryTransition(t *testing.T) {
	cases := []struct {
		name  string
		event events.Event
		want  []string
	}{
		{
			name:  "callout created",
			event: events.Event{Type: events.EventCalloutCreated, Facts: events.Facts{CalloutID: "c1"}},
			want:  []string{cache.KeyCalloutList},
		},
		{
			name:  "callout edited",
			event: events.Event{Type: events.EventCalloutEdited, Facts: events.Facts{CalloutID: "c1"}},
			want:  []string{cache.KeyCalloutList, cache.CalloutDetailKey("c1")},
		},
		{
			name:  "sro generated",
			event: events.Event{Type: events.EventSROGenerated, Facts: events.Facts{CalloutID: "c1", SROID: "s1"}},
			want:  []string{cache.CalloutDetailKey("c1"), cache.KeyCalloutList, cache.KeySROList},
		},
		{
			name: "sro approved with new schedule",
			event: events.Event{Type: events.EventSROApproved, Facts: events.Facts{
				CalloutID: "c1", SROID: "s1", ScheduleID: "sch1", ScheduleCreated: true,
			}},
			want: []string{cache.KeySROList, cache.SRODetailKey("s1"), cache.KeyScheduleList},
		},
		{
			name: "sro approved without new schedule",
			event: events.Event{Type: events.EventSROApproved, Facts: events.Facts{
				CalloutID: "c1", SROID: "s1", ScheduleID: "sch1",
			}},
			want: []string{cache.KeySROList, cache.SRODetailKey("s1")},
		},
		{
			name:  "schedule updated",
			event: events.Event{Type: events.EventScheduleUpdated, Facts: events.Facts{SROID: "s1", ScheduleID: "sch1"}},
			want:  []string{cache.KeyScheduleList, cache.ScheduleDetailKey("sch1")},
		},
		{
			name:  "well created",
			event: events.Event{Type: events.EventWellCreated, Facts: events.Facts{WellID: "w1"}},
			want:  []string{cache.KeyWells},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, cache.KeysFor(tc.event))
		})
	}
}

func TestKeysForUnknownEventIsEmpty(t *testing.T) {
	assert.Empty(t, cache.KeysFor(events.Event{Type: "unrelated"}))
}

func TestRegisterInvalidationWiresEveryEventType(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	store := newStore()
	cache.RegisterInvalidation(dispatcher, store)

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:  events.EventSROGenerated,
		Facts: events.Facts{CalloutID: "c1", SROID: "s1"},
	})
	assert.NoError(t, err)

	// Publish is synchronous, so the bumps are visible on return.
	assert.Equal(t, uint64(1), store.Version(cache.KeyCalloutList))
	assert.Equal(t, uint64(1), store.Version(cache.CalloutDetailKey("c1")))
	assert.Equal(t, uint64(1), store.Version(cache.KeySROList))
	assert.Equal(t, uint64(0), store.Version(cache.KeyScheduleList))

	err = dispatcher.Publish(context.Background(), events.Event{
		Type:  events.EventWellCreated,
		Facts: events.Facts{WellID: "w1"},
	})
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), store.Version(cache.KeyWells))
	// Reference-data caches never touch the lifecycle list caches.
	assert.Equal(t, uint64(1), store.Version(cache.KeyCalloutList))
}
