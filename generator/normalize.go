package generator

import "fmt"

// Normalize turns a raw track into a fact sheet. It reports false for tracks
// without flights since there is no primary flight to describe.
func Normalize(t RawTrack, links Links) (NormalizedTrack, bool) {
	if len(t.Flights) == 0 {
		return NormalizedTrack{}, false
	}
	first := t.Flights[0]

	var distance float64
	for _, f := range t.Flights {
		distance += f.Distance
	}
	for _, h := range t.Hikes {
		distance += h.Distance
	}

	n := NormalizedTrack{
		ID:           t.ID,
		ImageLink:    fmt.Sprintf(links.Image, t.ID),
		PilotName:    t.Pilot.Name,
		TrackLink:    fmt.Sprintf(links.Track, t.ID),
		ProfileLink:  fmt.Sprintf(links.Profile, t.Pilot.ID),
		Site:         TitleCase(first.Site.Name),
		Type:         classify(t),
		Distance:     distance,
		Duration:     FormatDuration(t.Ended - t.Started),
		FlightCount:  len(t.Flights),
		HikeCount:    len(t.Hikes),
		GliderName:   t.Wing,
		ThermalCount: t.ThermalCount,
	}
	if t.Wpts > 0 {
		wpts := t.Wpts
		madeGoal := t.AtGoal > 0
		n.WaypointCount = &wpts
		n.MadeGoal = &madeGoal
	}
	return n, true
}

// NormalizeAll normalizes tracks in order, dropping the ones without flights.
func NormalizeAll(tracks []RawTrack, links Links) []NormalizedTrack {
	out := make([]NormalizedTrack, 0, len(tracks))
	for _, t := range tracks {
		if n, ok := Normalize(t, links); ok {
			out = append(out, n)
		}
	}
	return out
}

// classify picks the activity label: competition beats hike & fly, which
// beats the flight type of the first flight.
func classify(t RawTrack) string {
	switch {
	case t.Wpts > 0:
		return "competition"
	case t.Mode == ModeHikeAndFly:
		return "Hike & Fly"
	}
	ft := t.Flights[0].Type
	if ft == "" {
		ft = "Unknown"
	}
	return TitleCase(ft)
}
