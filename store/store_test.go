package store

import (
	"testing"

	"skybook-cli/model"
	"skybook-cli/service"
)

func setTestStateDirs(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", root)
	t.Setenv("XDG_CACHE_HOME", root)
}

func TestAirportCache_RoundTrip(t *testing.T) {
	setTestStateDirs(t)

	airports, fresh, err := LoadAirportCache()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(airports) != 0 || fresh {
		t.Fatalf("expected empty stale cache, got %d airports fresh=%v", len(airports), fresh)
	}

	want := []model.Airport{
		{Id: 1, Name: "Heathrow", Code: "LHR"},
		{Id: 2, Name: "John F. Kennedy", Code: "JFK"},
	}
	if err := SaveAirportCache(want); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	airports, fresh, err = LoadAirportCache()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !fresh {
		t.Fatal("expected a just-saved cache to be fresh")
	}
	if len(airports) != 2 || airports[1].Code != "JFK" {
		t.Fatalf("unexpected airports: %+v", airports)
	}
}

func TestSession_RoundTrip(t *testing.T) {
	setTestStateDirs(t)

	session, err := LoadSession()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if session.AccessToken != "" {
		t.Fatalf("expected empty session, got %+v", session)
	}

	want := service.Session{
		AccessToken:  "token-a",
		RefreshToken: "token-r",
		TokenType:    "bearer",
		User:         service.SessionUser{Id: "user-1", Email: "ada@example.com"},
	}
	if err := SaveSession(want); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	session, err = LoadSession()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if session.AccessToken != "token-a" || session.User.Email != "ada@example.com" {
		t.Fatalf("unexpected session: %+v", session)
	}

	if err := ClearSession(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	session, err = LoadSession()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if session.AccessToken != "" {
		t.Fatalf("expected cleared session, got %+v", session)
	}

	// clearing twice is fine
	if err := ClearSession(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestRememberSearch_DeduplicatesAndCaps(t *testing.T) {
	setTestStateDirs(t)

	lhr := model.Airport{Id: 1, Name: "Heathrow", Code: "LHR"}
	jfk := model.Airport{Id: 2, Name: "John F. Kennedy", Code: "JFK"}
	cdg := model.Airport{Id: 3, Name: "Charles de Gaulle", Code: "CDG"}

	if err := RememberSearch(model.TripTypeOneWay, lhr, jfk); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := RememberSearch(model.TripTypeRoundTrip, lhr, cdg); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := RememberSearch(model.TripTypeRoundTrip, lhr, jfk); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	searches, err := LoadRecentSearches()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(searches) != 2 {
		t.Fatalf("expected the repeated route deduplicated, got %+v", searches)
	}
	if searches[0].DestinationCode != "JFK" || searches[0].TripType != model.TripTypeRoundTrip {
		t.Fatalf("expected most recent search first, got %+v", searches[0])
	}
	if searches[1].DestinationCode != "CDG" {
		t.Fatalf("unexpected second search: %+v", searches[1])
	}
}

func TestRememberSearch_KeepsAtMostEight(t *testing.T) {
	setTestStateDirs(t)

	origin := model.Airport{Id: 100, Name: "Origin", Code: "ORG"}
	for i := 0; i < 12; i++ {
		destination := model.Airport{Id: 200 + i, Code: "D" + string(rune('A'+i))}
		if err := RememberSearch(model.TripTypeOneWay, origin, destination); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	}

	searches, err := LoadRecentSearches()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(searches) != maxRecentRoutes {
		t.Fatalf("expected %d searches, got %d", maxRecentRoutes, len(searches))
	}
	if searches[0].DestinationId != 211 {
		t.Fatalf("expected newest search first, got %+v", searches[0])
	}
}
