package generator

// Pilot identifies the owner of a track.
type Pilot struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
}

// Site is the launch site a flight started from.
type Site struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Flight is one airborne segment of a track.
type Flight struct {
	ID       string  `json:"id"`
	Distance float64 `json:"distance"`
	Score    float64 `json:"score,omitempty"`
	Type     string  `json:"type"`
	Started  int64   `json:"started"`
	Ended    int64   `json:"ended"`
	Site     Site    `json:"site"`
}

// Hike is one on-foot segment of a track. It only contributes distance.
type Hike struct {
	ID       string  `json:"id"`
	Distance float64 `json:"distance"`
	Gain     float64 `json:"gain,omitempty"`
	Started  int64   `json:"started"`
	Ended    int64   `json:"ended"`
}

// ModeHikeAndFly marks tracks that mix hikes and flights.
const ModeHikeAndFly = "h&f"

// RawTrack is a track as returned by the tracking API. Timestamps are unix
// milliseconds.
type RawTrack struct {
	ID           string   `json:"id"`
	Pilot        Pilot    `json:"pilot"`
	Category     string   `json:"category,omitempty"`
	Started      int64    `json:"started"`
	Ended        int64    `json:"ended"`
	Hikes        []Hike   `json:"hikes"`
	Flights      []Flight `json:"flights"`
	Wing         string   `json:"wing"`
	Mode         string   `json:"mode"`
	AtGoal       int      `json:"atGoal"`
	Wpts         int      `json:"wpts"`
	ThermalCount int      `json:"thermalCount"`
}

// TrackPage is one page of best tracks. Total counts every track in the
// window, not only the returned ones.
type TrackPage struct {
	Tracks []RawTrack `json:"tracks"`
	Total  int        `json:"total"`
}

// NormalizedTrack is the display-ready fact sheet handed to the model.
// WaypointCount and MadeGoal are only set for competition tracks.
type NormalizedTrack struct {
	ID            string  `json:"id"`
	ImageLink     string  `json:"image_link"`
	PilotName     string  `json:"pilot_name"`
	TrackLink     string  `json:"track_link"`
	ProfileLink   string  `json:"profile_link"`
	Site          string  `json:"site"`
	Type          string  `json:"type"`
	Distance      float64 `json:"distance"`
	Duration      string  `json:"duration"`
	WaypointCount *int    `json:"waypoint_count,omitempty"`
	MadeGoal      *bool   `json:"made_goal,omitempty"`
	FlightCount   int     `json:"flight_count"`
	HikeCount     int     `json:"hike_count"`
	GliderName    string  `json:"glider_name"`
	ThermalCount  int     `json:"thermal_count"`
}

// TrackSummary is the inbound payload of the track comment and brief agents.
// Previous holds earlier briefs for the same pilot, newest last.
type TrackSummary struct {
	ID                  string   `json:"id"`
	PilotName           string   `json:"pilot_name"`
	Site                string   `json:"site"`
	Type                string   `json:"type"`
	Distance            float64  `json:"distance"`
	Duration            string   `json:"duration"`
	WaypointCount       *int     `json:"waypoint_count,omitempty"`
	MadeGoal            *bool    `json:"made_goal,omitempty"`
	KmToGoal            *float64 `json:"km_to_goal,omitempty"`
	ThermalCount        int      `json:"thermal_count"`
	GlideCount          int      `json:"glide_count"`
	TotalTracksThisYear int      `json:"total_tracks_this_year"`
	IsComp              bool     `json:"is_comp"`
	Date                string   `json:"date"`
	Previous            []string `json:"previous,omitempty"`
}

// GeneratedContent is a validated blog post produced by the model.
type GeneratedContent struct {
	Title   string `json:"title"`
	Brief   string `json:"brief"`
	Content string `json:"content"`
	Image   string `json:"image"`
}

// BlogPost is the publish payload for a blog post.
type BlogPost struct {
	GeneratedContent
	Author string `json:"author"`
}

// MemoryNote is a short summary of a published post, keyed by the start of
// the week it covered (unix milliseconds).
type MemoryNote struct {
	WeekStart  int64  `json:"week_start"`
	MemoryText string `json:"memory_text"`
	Title      string `json:"title"`
}

// Links holds printf templates, each taking a single id.
type Links struct {
	Track   string
	Profile string
	Image   string
}

// DefaultLinks points at the public tracking site.
var DefaultLinks = Links{
	Track:   "https://volandoo.com/tracks/%s",
	Profile: "https://volandoo.com/pilots/%s",
	Image:   "https://ik.imagekit.io/tcixzkbxb/prod/screenshots/%s.jpg",
}
