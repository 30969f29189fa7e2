package protocol

// Message is the single envelope used for both requests and responses.
// Which fields are meaningful depends on Type.
type Message struct {
	Type    MessageType `json:"type"`
	Success bool        `json:"success"`
	Error   ErrorCode   `json:"error,omitempty"`
	Text    string      `json:"text,omitempty"`

	// Credentials and account fields.
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	Password    string `json:"password,omitempty"`
	NewPassword string `json:"new_password,omitempty"`
	Token       string `json:"token,omitempty"`
	Enabled     bool   `json:"enabled,omitempty"`

	// Catalog and library addressing.
	Search      string `json:"search,omitempty"`
	PlantID     int64  `json:"plant_id,omitempty"`
	EntryID     int64  `json:"entry_id,omitempty"`
	NewNickname string `json:"new_nickname,omitempty"`
	Date        string `json:"date,omitempty"`
	PictureURL  string `json:"picture_url,omitempty"`
	Upload      bool   `json:"upload,omitempty"`

	// Response payloads.
	User      *User          `json:"user,omitempty"`
	Plants    []Plant        `json:"plants"`
	Details   *PlantDetails  `json:"details,omitempty"`
	Entry     *LibraryEntry  `json:"entry,omitempty"`
	Library   []LibraryEntry `json:"library"`
	UploadURL string         `json:"upload_url,omitempty"`
	Count     int64          `json:"count,omitempty"`
}

// User is the public view of an account. It never carries a password.
type User struct {
	ID                   int64  `json:"id"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	FunFactsEnabled      bool   `json:"fun_facts_enabled"`
}

// Plant is a species summary as returned by SEARCH.
type Plant struct {
	ID             int64  `json:"id"`
	CommonName     string `json:"common_name"`
	ScientificName string `json:"scientific_name"`
	ImageURL       string `json:"image_url,omitempty"`
}

// PlantDetails is the extended species information.
type PlantDetails struct {
	PlantID              int64  `json:"plant_id"`
	ScientificName       string `json:"scientific_name"`
	CommonName           string `json:"common_name"`
	Genus                string `json:"genus"`
	Family               string `json:"family"`
	Light                int    `json:"light"`
	WaterFrequency       int    `json:"water_frequency"`
	WateringIntervalDays int    `json:"watering_interval_days"`
}

// LibraryEntry is one plant in the user's library.
type LibraryEntry struct {
	ID                   int64  `json:"id"`
	Nickname             string `json:"nickname"`
	LastWatered          string `json:"last_watered"`
	PictureURL           string `json:"picture_url,omitempty"`
	WateringIntervalDays int    `json:"watering_interval_days"`
	Plant                Plant  `json:"plant"`
}

// OK returns an empty successful response for t.
func OK(t MessageType) *Message {
	return &Message{Type: t, Success: true}
}

// Fail returns a failed response for t.
func Fail(t MessageType, code ErrorCode, text string) *Message {
	return &Message{Type: t, Error: code, Text: text}
}
