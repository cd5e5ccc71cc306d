package activitypub

import "time"

// Well-known ActivityStreams identifiers.
const (
	ContextActivityStreams = "https://www.w3.org/ns/activitystreams"
	ContextSecurity        = "https://w3id.org/security/v1"
	PublicStream           = "https://www.w3.org/ns/activitystreams#Public"
	ActivityJSONType       = "application/activity+json"
)

// WebFinger is the document served from /.well-known/webfinger.
type WebFinger struct {
	Subject string          `json:"subject,omitempty"`
	Links   []WebFingerLink `json:"links,omitempty"`
}

// WebFingerLink points at the profile document.
type WebFingerLink struct {
	Rel  string `json:"rel"`
	Type string `json:"type"`
	Href string `json:"href,omitempty"`
}

// Profile is the site's actor, an ActivityStreams Service.
type Profile struct {
	Context                   []any           `json:"@context"`
	ID                        string          `json:"id"`
	Type                      string          `json:"type"`
	Following                 string          `json:"following,omitempty"`
	Inbox                     string          `json:"inbox,omitempty"`
	Outbox                    string          `json:"outbox,omitempty"`
	PreferredUsername         string          `json:"preferredUsername,omitempty"`
	Name                      string          `json:"name,omitempty"`
	Summary                   string          `json:"summary,omitempty"`
	URL                       string          `json:"url"`
	Published                 *time.Time      `json:"published,omitempty"`
	PublicKey                 *PublicKey      `json:"publicKey,omitempty"`
	Attachment                []PropertyValue `json:"attachment"`
	Icon                      *Image          `json:"icon,omitempty"`
	Discoverable              bool            `json:"discoverable"`
	ManuallyApprovesFollowers bool            `json:"manuallyApprovesFollowers"`
}

// PublicKey is the actor's signing key.
type PublicKey struct {
	ID           string `json:"id"`
	Owner        string `json:"owner"`
	PublicKeyPem string `json:"publicKeyPem"`
}

// PropertyValue is a profile metadata row.
type PropertyValue struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Image is an icon or a note attachment.
type Image struct {
	Type      string `json:"type"`
	MediaType string `json:"mediaType,omitempty"`
	Name      string `json:"name,omitempty"`
	URL       string `json:"url"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

// OrderedCollection is the outbox (or its index when paged).
type OrderedCollection struct {
	Context      string     `json:"@context,omitempty"`
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	Summary      string     `json:"summary,omitempty"`
	TotalItems   int        `json:"totalItems"`
	Current      string     `json:"current,omitempty"`
	First        string     `json:"first,omitempty"`
	Last         string     `json:"last,omitempty"`
	OrderedItems []Activity `json:"orderedItems,omitempty"`
	Items        []Follow   `json:"items,omitempty"`
}

// OrderedCollectionPage is one page of a paged outbox.
type OrderedCollectionPage struct {
	Context      string     `json:"@context"`
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	PartOf       string     `json:"partOf"`
	TotalItems   int        `json:"totalItems"`
	Current      string     `json:"current,omitempty"`
	First        string     `json:"first,omitempty"`
	Last         string     `json:"last,omitempty"`
	Next         string     `json:"next,omitempty"`
	Prev         string     `json:"prev,omitempty"`
	OrderedItems []Activity `json:"orderedItems"`
}

// Activity announces one post.
type Activity struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Actor     string    `json:"actor"`
	Published time.Time `json:"published"`
	To        []string  `json:"to"`
	Object    Note      `json:"object"`
}

// Note is the post summary carried by an Activity.
type Note struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Published    time.Time `json:"published"`
	URL          string    `json:"url"`
	AttributedTo string    `json:"attributedTo"`
	To           []string  `json:"to"`
	Content      string    `json:"content"`
	Sensitive    bool      `json:"sensitive"`
	Attachment   []Image   `json:"attachment,omitempty"`
}

// Follow is one entry of the following collection.
type Follow struct {
	Type   string `json:"type"`
	Actor  string `json:"actor"`
	Object string `json:"object"`
}
