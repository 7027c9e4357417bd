package models

import "sort"

// Route is a bus route as listed by the fare backend.
type Route struct {
	ID   string `json:"route_id"`
	Name string `json:"route_name"`
}

// Stop belongs to one route. Sequence defines the direction of travel.
type Stop struct {
	Name     string `json:"stop_name"`
	Sequence int    `json:"stop_sequence"`
}

// SortStops orders stops by sequence, keeping backend order for ties.
func SortStops(stops []Stop) []Stop {
	out := make([]Stop, len(stops))
	copy(out, stops)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out
}

// HasStop reports whether name is one of the stops.
func HasStop(stops []Stop, name string) bool {
	for _, s := range stops {
		if s.Name == name {
			return true
		}
	}
	return false
}
