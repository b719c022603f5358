package session

import (
	"time"

	"github.com/krew-solutions/ascetic-search-go/asceticsearch/signals"
)

type QueryStartedEvent struct {
	Query   string
	Params  []any
	Sender  any
	Session DbSession
}

type QueryEndedEvent struct {
	Query        string
	Params       []any
	Sender       any
	Session      DbSession
	ResponseTime time.Duration
	Err          error
}

// QuerySignals holds the query lifecycle signals shared by a session and
// the transaction sessions nested in it.
type QuerySignals struct {
	onQueryStarted signals.Signal[QueryStartedEvent]
	onQueryEnded   signals.Signal[QueryEndedEvent]
}

func NewQuerySignals() QuerySignals {
	return QuerySignals{
		onQueryStarted: signals.NewSignal[QueryStartedEvent](),
		onQueryEnded:   signals.NewSignal[QueryEndedEvent](),
	}
}

func (s QuerySignals) OnQueryStarted() signals.Signal[QueryStartedEvent] {
	return s.onQueryStarted
}

func (s QuerySignals) OnQueryEnded() signals.Signal[QueryEndedEvent] {
	return s.onQueryEnded
}

// Track notifies the started event and returns the function that notifies the ended one.
func (s QuerySignals) Track(sess DbSession, sender any, query string, params []any) func(error) {
	s.onQueryStarted.Notify(QueryStartedEvent{
		Query:   query,
		Params:  params,
		Sender:  sender,
		Session: sess,
	})
	start := time.Now()
	return func(err error) {
		s.onQueryEnded.Notify(QueryEndedEvent{
			Query:        query,
			Params:       params,
			Sender:       sender,
			Session:      sess,
			ResponseTime: time.Since(start),
			Err:          err,
		})
	}
}
