package hover

import (
	"sync"
	"testing"
)

func TestStoreDispatchNotifiesSubscribers(t *testing.T) {
	s := NewStore()

	if got := s.Current().Index; got != NoIndex {
		t.Fatalf("initial index = %d; want %d", got, NoIndex)
	}

	var a, b []Event
	s.Subscribe(func(e Event) { a = append(a, e) })
	idB := s.Subscribe(func(e Event) { b = append(b, e) })

	s.Dispatch(Event{Index: 3, OffsetX: 10, OffsetY: 20})
	s.Unsubscribe(idB)
	s.Dispatch(Event{Index: NoIndex, OffsetX: 1, OffsetY: 2})

	if len(a) != 2 {
		t.Errorf("subscriber a got %d events; want 2", len(a))
	}
	if len(b) != 1 || b[0].Index != 3 {
		t.Errorf("subscriber b got %+v; want one event with index 3", b)
	}
	if got := s.Current(); got.Index != NoIndex || got.OffsetX != 1 {
		t.Errorf("Current() = %+v; want last dispatched event", got)
	}
}

func TestStoreClose(t *testing.T) {
	s := NewStore()
	calls := 0
	s.Subscribe(func(Event) { calls++ })

	s.Close()
	if s.Len() != 0 {
		t.Errorf("Len() after Close = %d; want 0", s.Len())
	}

	s.Dispatch(Event{Index: 1})
	if calls != 0 {
		t.Errorf("subscriber called %d times after Close; want 0", calls)
	}
	if s.Current().Index != NoIndex {
		t.Errorf("Current() changed after Close")
	}

	s.Subscribe(func(Event) { calls++ })
	if s.Len() != 0 {
		t.Errorf("Subscribe after Close registered a subscriber")
	}
}

func TestStoreConcurrentDispatch(t *testing.T) {
	s := NewStore()
	rec := &Recorder{}
	s.Subscribe(rec.Dispatch)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Dispatch(Event{Index: i})
		}(i)
	}
	wg.Wait()

	if got := len(rec.Events()); got != 50 {
		t.Errorf("recorded %d events; want 50", got)
	}
}

func TestSinkFunc(t *testing.T) {
	var got Event
	var sink Sink = SinkFunc(func(e Event) { got = e })
	sink.Dispatch(Event{Chart: "mapped-memory", Index: 7})
	if got.Index != 7 || got.Chart != "mapped-memory" {
		t.Errorf("SinkFunc forwarded %+v", got)
	}
	Discard.Dispatch(Event{})
}
