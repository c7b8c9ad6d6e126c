// Package syncer reconciles clan membership between the authoritative
// source and the local clan store, publishing an event whenever the store's
// membership actually changes.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/wows-tools/wows-clan-sync/metrics"
	"github.com/wows-tools/wows-clan-sync/model"
)

// Subjects the synchronizer publishes on. Payload is the clan id in decimal
// string form.
const (
	TopicClanAdd    = "clans.add"
	TopicClanDelete = "clans.delete"
)

// ErrClanNotFound means the tag resolves to no clan in the store or the
// authoritative source.
var ErrClanNotFound = errors.New("clan not found in the store or the API")

// DependencyError wraps a transport-level failure from one of the
// collaborators. It is never conflated with ErrClanNotFound: an explicit 404
// from a collaborator is an absent lookup, not an error.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// Outcome is the result of a successful Add or Remove.
type Outcome int

const (
	Unknown Outcome = iota
	Created
	AlreadyPresent
	Removed
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case AlreadyPresent:
		return "already_present"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Store is the local clan store. Create must report whether a record was
// genuinely created so that concurrent adds deduplicate in the store itself;
// Delete must tolerate a missing record.
type Store interface {
	LookupTag(ctx context.Context, tag string) (model.Lookup, error)
	Create(ctx context.Context, clan model.Clan) (bool, error)
	Delete(ctx context.Context, clan model.Clan) error
}

// Source is the authoritative, read-only clan source.
type Source interface {
	LookupTag(ctx context.Context, tag string) (model.Lookup, error)
}

// Publisher is a per-request event bus handle. Publishing is
// fire-and-forget; no acknowledgment is awaited.
type Publisher interface {
	Publish(subject string, payload []byte) error
}

type Syncer struct {
	Store  Store
	Source Source
	Logger *zap.SugaredLogger
}

func New(store Store, source Source, logger *zap.SugaredLogger) *Syncer {
	return &Syncer{
		Store:  store,
		Source: source,
		Logger: logger,
	}
}

// locate resolves a tag to a clan record, preferring the store and falling
// back to the authoritative source. inStore reports where the record came
// from, so callers can tell "already satisfied" apart from "needs a store
// write". Returns ErrClanNotFound when neither side knows the tag.
func (s *Syncer) locate(ctx context.Context, tag string) (clan model.Clan, inStore bool, err error) {
	stored, err := s.Store.LookupTag(ctx, tag)
	if err != nil {
		return model.Clan{}, false, &DependencyError{Op: "store lookup", Err: err}
	}
	if stored.Found {
		return stored.Clan, true, nil
	}

	known, err := s.Source.LookupTag(ctx, tag)
	if err != nil {
		return model.Clan{}, false, &DependencyError{Op: "source lookup", Err: err}
	}
	if !known.Found {
		return model.Clan{}, false, ErrClanNotFound
	}
	return known.Clan, false, nil
}

// Add ensures a record for tag exists in the store. It publishes on
// TopicClanAdd only when this call genuinely created the record; a store
// that already held it, whether seen during lookup or detected by the store
// on create, yields AlreadyPresent and no event.
func (s *Syncer) Add(ctx context.Context, pub Publisher, tag string) (Outcome, error) {
	clan, inStore, err := s.locate(ctx, tag)
	if err != nil {
		return s.done("add", Unknown, err)
	}
	if inStore {
		s.Logger.Debugf("clan [%s] already stored, nothing to do", tag)
		return s.done("add", AlreadyPresent, nil)
	}

	created, err := s.Store.Create(ctx, clan)
	if err != nil {
		return s.done("add", Unknown, &DependencyError{Op: "store create", Err: err})
	}
	if !created {
		// Lost the race against a concurrent add; the winner owns the event.
		s.Logger.Debugf("clan %d [%s] was stored concurrently", clan.ID, tag)
		return s.done("add", AlreadyPresent, nil)
	}

	s.publish(pub, TopicClanAdd, clan)
	return s.done("add", Created, nil)
}

// Remove ensures no record for tag remains in the store. Unlike Add, it
// publishes whenever a target was resolved and the delete call succeeded,
// even if the store lookup missed and the source supplied the id: deleting
// an absent store record is a tolerated no-op.
func (s *Syncer) Remove(ctx context.Context, pub Publisher, tag string) (Outcome, error) {
	clan, _, err := s.locate(ctx, tag)
	if err != nil {
		return s.done("remove", Unknown, err)
	}

	if err := s.Store.Delete(ctx, clan); err != nil {
		return s.done("remove", Unknown, &DependencyError{Op: "store delete", Err: err})
	}

	s.publish(pub, TopicClanDelete, clan)
	return s.done("remove", Removed, nil)
}

// publish is best effort. The store transition has already happened by the
// time an event goes out, and losing the event is the accepted gap, so a
// failure is logged and not surfaced to the caller.
func (s *Syncer) publish(pub Publisher, subject string, clan model.Clan) {
	payload := []byte(strconv.Itoa(clan.ID))
	if err := pub.Publish(subject, payload); err != nil {
		s.Logger.Warnf("publishing %s for clan %d [%s]: %s", subject, clan.ID, clan.Tag, err)
		return
	}
	metrics.EventsPublished.WithLabelValues(subject).Inc()
	s.Logger.Debugf("published %s for clan %d [%s]", subject, clan.ID, clan.Tag)
}

func (s *Syncer) done(op string, outcome Outcome, err error) (Outcome, error) {
	switch {
	case err == nil:
		metrics.Operations.WithLabelValues(op, outcome.String()).Inc()
	case errors.Is(err, ErrClanNotFound):
		metrics.Operations.WithLabelValues(op, "not_found").Inc()
	default:
		metrics.Operations.WithLabelValues(op, "dependency_failure").Inc()
	}
	return outcome, err
}
