package models

// Event is a command that may move a table between statuses.
type Event string

const (
	EventReserve           Event = "reserve"
	EventCancelReservation Event = "cancel_reservation"
	EventStartSession      Event = "start_session"
	EventEndSession        Event = "end_session"
	EventSetExpectedEnd    Event = "set_expected_end_time"
	EventChangeStatus      Event = "change_status"
	EventDelete            Event = "delete"
)

// Transition is a single allowed edge in the table status machine.
type Transition struct {
	From  TableStatus `json:"from"`
	Event Event       `json:"event"`
	To    TableStatus `json:"to"`
}

var transitionsTable = []Transition{
	{From: StatusAvailable, Event: EventReserve, To: StatusReserved},
	{From: StatusReserved, Event: EventCancelReservation, To: StatusAvailable},
	{From: StatusReserved, Event: EventStartSession, To: StatusOccupied},
	{From: StatusAvailable, Event: EventStartSession, To: StatusOccupied},
	{From: StatusOccupied, Event: EventEndSession, To: StatusAvailable},
}

// TransitionFor returns the allowed transition for a given status and event.
func TransitionFor(from TableStatus, ev Event) (Transition, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.Event == ev {
			return tr, true
		}
	}
	return Transition{}, false
}

// EventFor finds the event that moves a table from one status to another.
// Lateral moves have no event.
func EventFor(from, to TableStatus) (Event, bool) {
	for _, tr := range transitionsTable {
		if tr.From == from && tr.To == to {
			return tr.Event, true
		}
	}
	return "", false
}

// Transitions returns a copy of the transition table.
func Transitions() []Transition {
	out := make([]Transition, len(transitionsTable))
	copy(out, transitionsTable)
	return out
}
