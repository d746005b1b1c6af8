package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"skybook-cli/model"
	"skybook-cli/service"
)

const (
	airportCacheTTL = 7 * 24 * time.Hour
	maxRecentRoutes = 8
)

type cacheEnvelope[T any] struct {
	UpdatedAt time.Time `json:"updated_at"`
	Data      T         `json:"data"`
}

// RecentSearch is one remembered route. Dates are deliberately not stored;
// a remembered route is re-run with fresh dates.
type RecentSearch struct {
	TripType        string `json:"trip_type"`
	OriginId        int    `json:"origin_id"`
	OriginCode      string `json:"origin_code"`
	DestinationId   int    `json:"destination_id"`
	DestinationCode string `json:"destination_code"`
}

type searchHistory struct {
	Searches []RecentSearch `json:"searches"`
}

// LoadAirportCache returns the cached airport list and whether it is still
// fresh. A missing cache file is not an error, it returns an empty list.
func LoadAirportCache() ([]model.Airport, bool, error) {
	path, err := cachePath("airports.json")
	if err != nil {
		return nil, false, err
	}
	cache, err := loadCache[[]model.Airport](path)
	if err != nil {
		return nil, false, err
	}
	return cache.Data, time.Since(cache.UpdatedAt) <= airportCacheTTL, nil
}

func SaveAirportCache(airports []model.Airport) error {
	path, err := cachePath("airports.json")
	if err != nil {
		return err
	}
	return saveCache(path, airports)
}

// LoadSession returns the persisted sign-in session, if any. Absence is not
// an error; the caller checks Session.Valid before using it.
func LoadSession() (service.Session, error) {
	path, err := configPath("session.json")
	if err != nil {
		return service.Session{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return service.Session{}, nil
		}
		return service.Session{}, err
	}
	var session service.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return service.Session{}, errors.New("invalid session format")
	}
	return session, nil
}

func SaveSession(session service.Session) error {
	path, err := configPath("session.json")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	// the session holds a bearer token, keep it owner-readable only
	return os.WriteFile(path, payload, 0o600)
}

func ClearSession() error {
	path, err := configPath("session.json")
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func LoadRecentSearches() ([]RecentSearch, error) {
	path, err := configPath("searches.json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var history searchHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, errors.New("invalid search history format")
	}
	return history.Searches, nil
}

// RememberSearch puts a route at the front of the history, dropping any
// earlier entry for the same route.
func RememberSearch(tripType string, origin model.Airport, destination model.Airport) error {
	history, _ := LoadRecentSearches()
	next := []RecentSearch{{
		TripType:        tripType,
		OriginId:        origin.Id,
		OriginCode:      origin.Code,
		DestinationId:   destination.Id,
		DestinationCode: destination.Code,
	}}

	for _, existing := range history {
		if existing.OriginId == origin.Id && existing.DestinationId == destination.Id {
			continue
		}
		if existing.OriginCode != "" && stringsEqualFold(existing.OriginCode, origin.Code) &&
			stringsEqualFold(existing.DestinationCode, destination.Code) {
			continue
		}
		next = append(next, existing)
		if len(next) >= maxRecentRoutes {
			break
		}
	}

	return saveRecentSearches(next)
}

func loadCache[T any](path string) (cacheEnvelope[T], error) {
	var cache cacheEnvelope[T]
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cache, nil
		}
		return cache, err
	}
	if err := json.Unmarshal(data, &cache); err != nil {
		return cache, err
	}
	return cache, nil
}

func saveCache[T any](path string, data T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	cache := cacheEnvelope[T]{
		UpdatedAt: time.Now(),
		Data:      data,
	}
	payload, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func saveRecentSearches(searches []RecentSearch) error {
	path, err := configPath("searches.json")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	history := searchHistory{Searches: searches}
	payload, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func configPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "skybook-cli", name), nil
}

func cachePath(name string) (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "skybook-cli", name), nil
}

func stringsEqualFold(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}
