// Package fixtures resolves scenario context (athlete, preference, event
// and route) from a YAML document.
package fixtures

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/fuelplan/internal/domain/model"
)

// ErrInvalidFixtures reports a fixture document that cannot be indexed.
var ErrInvalidFixtures = errors.New("invalid fixtures")

// Estimate is an external finish-time estimate for one athlete and event.
type Estimate struct {
	AthleteID   string  `yaml:"athlete_id"`
	EventID     string  `yaml:"event_id"`
	FinishHours float64 `yaml:"finish_hours"`
}

type document struct {
	Athletes    []model.Athlete    `yaml:"athletes"`
	Preferences []model.Preference `yaml:"preferences"`
	Events      []model.Event      `yaml:"events"`
	Routes      []model.Route      `yaml:"routes"`
	Estimates   []Estimate         `yaml:"estimates"`
}

// Store is an immutable, indexed set of fixtures.
type Store struct {
	athletes    map[string]model.Athlete
	preferences map[string]model.Preference
	events      map[string]model.Event
	routes      map[string]model.Route
	estimates   map[string]float64
}

// LoadFile reads fixtures from a YAML file.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()

	s, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("fixtures %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and indexes a YAML fixture document.
func Parse(r io.Reader) (*Store, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return index(doc)
}

func index(doc document) (*Store, error) {
	s := &Store{
		athletes:    make(map[string]model.Athlete, len(doc.Athletes)),
		preferences: make(map[string]model.Preference, len(doc.Preferences)),
		events:      make(map[string]model.Event, len(doc.Events)),
		routes:      make(map[string]model.Route, len(doc.Routes)),
		estimates:   make(map[string]float64, len(doc.Estimates)),
	}
	for _, a := range doc.Athletes {
		if err := put(s.athletes, "athlete", a.ID, a); err != nil {
			return nil, err
		}
	}
	for _, p := range doc.Preferences {
		if err := put(s.preferences, "preference", p.AthleteID, p); err != nil {
			return nil, err
		}
	}
	for _, e := range doc.Events {
		if err := put(s.events, "event", e.ID, e); err != nil {
			return nil, err
		}
	}
	for _, r := range doc.Routes {
		if err := put(s.routes, "route", r.ID, r); err != nil {
			return nil, err
		}
	}
	for _, e := range doc.Estimates {
		if err := put(s.estimates, "estimate", estimateKey(e.AthleteID, e.EventID), e.FinishHours); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func put[T any](m map[string]T, entity, id string, v T) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: %s without id", ErrInvalidFixtures, entity)
	}
	if _, dup := m[id]; dup {
		return fmt.Errorf("%w: duplicate %s %q", ErrInvalidFixtures, entity, id)
	}
	m[id] = v
	return nil
}

func estimateKey(athleteID, eventID string) string {
	return strings.TrimSpace(athleteID) + "/" + strings.TrimSpace(eventID)
}

// Resolve looks up every entity the input references. A missing athlete,
// preference, event or explicitly named route yields a
// *model.MissingContextError. Without a route id the route is synthesized
// from the event's distance and elevation gain.
func (s *Store) Resolve(ctx context.Context, in model.ScenarioInput) (model.ScenarioContext, error) {
	if err := ctx.Err(); err != nil {
		return model.ScenarioContext{}, err
	}

	athlete, ok := s.athletes[in.AthleteID]
	if !ok {
		return model.ScenarioContext{}, &model.MissingContextError{Entity: "athlete", ID: in.AthleteID}
	}
	pref, err := s.Preference(in.AthleteID)
	if err != nil {
		return model.ScenarioContext{}, err
	}
	event, ok := s.events[in.EventID]
	if !ok {
		return model.ScenarioContext{}, &model.MissingContextError{Entity: "event", ID: in.EventID}
	}

	var route model.Route
	if in.RouteID != "" {
		route, ok = s.routes[in.RouteID]
		if !ok {
			return model.ScenarioContext{}, &model.MissingContextError{Entity: "route", ID: in.RouteID}
		}
	} else {
		if event.DistanceKm <= 0 {
			return model.ScenarioContext{}, &model.MissingContextError{Entity: "route for event", ID: event.ID}
		}
		route = model.Route{DistanceKm: event.DistanceKm, ElevationGainM: event.ElevationGainM}
	}

	return model.ScenarioContext{
		Athlete:              athlete,
		Preference:           pref,
		Event:                event,
		Route:                route,
		EstimatedFinishHours: s.estimates[estimateKey(in.AthleteID, in.EventID)],
	}, nil
}

// Preference returns the stored preference of an athlete.
func (s *Store) Preference(athleteID string) (model.Preference, error) {
	pref, ok := s.preferences[athleteID]
	if !ok {
		return model.Preference{}, &model.MissingContextError{Entity: "preference", ID: athleteID}
	}
	return pref, nil
}

// Counts reports how many entities of each kind are indexed.
func (s *Store) Counts() map[string]int {
	return map[string]int{
		"athletes":    len(s.athletes),
		"preferences": len(s.preferences),
		"events":      len(s.events),
		"routes":      len(s.routes),
		"estimates":   len(s.estimates),
	}
}
