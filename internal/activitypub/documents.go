package activitypub

import (
	"fmt"
	"html"
	"path"
	"sort"
	"strings"
	"time"

	xhtml "golang.org/x/net/html"

	"git.home.luguber.info/inful/kiln/internal/config"
	"git.home.luguber.info/inful/kiln/internal/site"
)

// maxNoteCharacters bounds the rendered note content of one post.
const maxNoteCharacters = 490

const linkAttributes = `target="_blank" rel="noopener noreferrer nofollow"`

// Front-matter keys read from posts.
const (
	DescriptionKey         = "description"
	FeaturedImageKey       = "actpub_featured_image"
	FeaturedImageWidthKey  = "actpub_featured_image_width"
	FeaturedImageHeightKey = "actpub_featured_image_height"
)

// urls resolves the absolute locations of the generated documents.
type urls struct {
	cfg *config.Config
}

func (u urls) doc(name string) string {
	return u.cfg.URLCombine(strings.Trim(u.cfg.ActivityPub.Directory, "/") + "/" + name)
}

func (u urls) profile() string   { return u.doc("profile.json") }
func (u urls) outbox() string    { return u.doc("outbox.json") }
func (u urls) inbox() string     { return u.doc("inbox.json") }
func (u urls) following() string { return u.doc("following.json") }

// outboxPage is outbox<n>.json.
func (u urls) outboxPage(n int) string {
	return strings.TrimSuffix(u.outbox(), ".json") + fmt.Sprintf("%d.json", n)
}

// absolute leaves absolute URLs alone and anchors everything else at the site URL.
func (u urls) absolute(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return u.cfg.URLCombine(ref)
}

// AddressName is @user@host.
func AddressName(cfg *config.Config) string {
	return "@" + cfg.ActivityPub.Username + "@" + cfg.URLNoHTTP
}

// BuildWebFinger returns the webfinger document.
func BuildWebFinger(cfg *config.Config) WebFinger {
	return WebFinger{
		Subject: "acct:" + cfg.ActivityPub.Username + "@" + cfg.URLNoHTTP,
		Links: []WebFingerLink{{
			Rel:  "self",
			Type: ActivityJSONType,
			Href: urls{cfg}.profile(),
		}},
	}
}

// BuildProfile returns the actor document. publicKeyPEM may be empty.
func BuildProfile(cfg *config.Config, publicKeyPEM string) (Profile, error) {
	u := urls{cfg}
	ap := cfg.ActivityPub
	p := Profile{
		Context: []any{
			ContextActivityStreams,
			ContextSecurity,
			map[string]string{
				"schema":        "http://schema.org#",
				"PropertyValue": "schema:PropertyValue",
				"value":         "schema:value",
			},
		},
		ID:                        u.profile(),
		Type:                      "Service",
		PreferredUsername:         ap.Username,
		Name:                      cfg.Title,
		Summary:                   ap.Summary,
		URL:                       cfg.URL,
		Discoverable:              true,
		ManuallyApprovesFollowers: false,
	}
	if len(ap.Following) > 0 {
		p.Following = u.following()
	}
	if ap.Inbox {
		p.Inbox = u.inbox()
	}
	if ap.Outbox {
		p.Outbox = u.outbox()
	}
	if ap.ProfileURL != "" {
		p.URL = u.absolute(ap.ProfileURL)
	}
	if ap.Created != "" {
		t, err := time.Parse(time.RFC3339, ap.Created)
		if err != nil {
			return Profile{}, fmt.Errorf("parse actpub_created: %w", err)
		}
		p.Published = &t
	}
	if publicKeyPEM != "" {
		p.PublicKey = &PublicKey{ID: p.ID + "#main-key", Owner: p.ID, PublicKeyPem: publicKeyPEM}
	}

	p.Attachment = []PropertyValue{{Type: "PropertyValue", Name: "Website", Value: attachmentLink(cfg.URL)}}
	if ap.GitHub != "" {
		p.Attachment = append(p.Attachment, PropertyValue{Type: "PropertyValue", Name: "GitHub", Value: attachmentLink(ap.GitHub)})
	}
	if ap.Contact != "" {
		contact := html.EscapeString(ap.Contact)
		p.Attachment = append(p.Attachment, PropertyValue{
			Type:  "PropertyValue",
			Name:  "Email",
			Value: fmt.Sprintf(`<a href="mailto:%s">%s</a>`, contact, contact),
		})
	}
	if ap.Icon != "" {
		icon := u.absolute(ap.Icon)
		p.Icon = &Image{Type: "Image", MediaType: mediaType(icon), URL: icon}
	}
	return p, nil
}

func attachmentLink(target string) string {
	t := html.EscapeString(target)
	return fmt.Sprintf(`<a href="%s" rel="me nofollow noopener noreferrer" target="_blank">%s</a>`, t, t)
}

// mediaType is image/<extension> of the URL path.
func mediaType(ref string) string {
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	return "image/" + strings.ToLower(strings.TrimPrefix(path.Ext(ref), "."))
}

// newestFirst returns a date-descending copy of posts.
func newestFirst(posts []*site.Page) []*site.Page {
	out := append([]*site.Page(nil), posts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// BuildActivities turns posts into Create activities.
func BuildActivities(cfg *config.Config, posts []*site.Page) []Activity {
	u := urls{cfg}
	actor := u.profile()
	out := make([]Activity, 0, len(posts))
	for _, post := range posts {
		link := cfg.URLCombine(post.URL)
		note := Note{
			ID:           link,
			Type:         "Note",
			Published:    post.Date,
			URL:          link,
			AttributedTo: actor,
			To:           []string{PublicStream},
			Content:      noteContent(post, link),
		}
		if img, ok := featuredImage(post); ok {
			note.Attachment = []Image{img}
		}
		out = append(out, Activity{
			ID:        link,
			Type:      "Create",
			Actor:     actor,
			Published: post.Date,
			To:        []string{PublicStream},
			Object:    note,
		})
	}
	return out
}

// noteContent is the bold title, the description cut to fit and a read-more
// link, together no longer than maxNoteCharacters.
func noteContent(post *site.Page, link string) string {
	title := "<p><strong>" + html.EscapeString(post.Title) + "</strong></p>"
	more := fmt.Sprintf(`<a %s href="%s">Read More</a>`, linkAttributes, html.EscapeString(link))

	description := ""
	if post.Bag.Has(DescriptionKey) {
		left := maxNoteCharacters - len(title) - len(more) - len("<p></p>")
		text := html.EscapeString(PlainText(post.Bag.GetString(DescriptionKey)))
		description = "<p>" + truncate(text, left) + "</p>"
	}
	return title + description + more
}

// truncate cuts s to at most n bytes on a rune boundary without splitting an
// HTML entity.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	cut := 0
	for i := range s {
		if i > n {
			break
		}
		cut = i
	}
	if i := strings.LastIndexByte(s[:cut], '&'); i >= 0 && !strings.Contains(s[i:cut], ";") {
		cut = i
	}
	return s[:cut]
}

// PlainText strips markup from s and collapses whitespace.
func PlainText(s string) string {
	z := xhtml.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case xhtml.TextToken:
			b.Write(z.Text())
			b.WriteByte(' ')
		}
	}
}

func featuredImage(post *site.Page) (Image, bool) {
	ref := post.Bag.GetString(FeaturedImageKey)
	if ref == "" {
		return Image{}, false
	}
	img := Image{
		Type:      "Image",
		MediaType: mediaType(ref),
		Name:      PlainText(post.Bag.GetString(DescriptionKey)),
		URL:       ref,
	}
	if v, ok := post.Bag.Get(FeaturedImageWidthKey); ok {
		if w, err := v.AsInt(); err == nil && w > 0 {
			img.Width = w
		}
	}
	if v, ok := post.Bag.Get(FeaturedImageHeightKey); ok {
		if h, err := v.AsInt(); err == nil && h > 0 {
			img.Height = h
		}
	}
	return img, true
}

// BuildOutbox returns the single-document outbox holding every post.
func BuildOutbox(cfg *config.Config, posts []*site.Page) OrderedCollection {
	items := BuildActivities(cfg, newestFirst(posts))
	return OrderedCollection{
		Context:      ContextActivityStreams,
		ID:           urls{cfg}.outbox(),
		Type:         "OrderedCollection",
		TotalItems:   len(items),
		OrderedItems: items,
	}
}

// BuildPagedOutbox splits posts into pages of perPage. The index carries the
// links; pages[i] is written to outbox<i+1>.json.
func BuildPagedOutbox(cfg *config.Config, posts []*site.Page, perPage int) (OrderedCollection, []OrderedCollectionPage) {
	u := urls{cfg}
	sorted := newestFirst(posts)
	index := OrderedCollection{
		Context:    ContextActivityStreams,
		ID:         u.outbox(),
		Type:       "OrderedCollection",
		TotalItems: len(sorted),
	}
	if len(sorted) == 0 || perPage <= 0 {
		return index, nil
	}

	total := (len(sorted) + perPage - 1) / perPage
	first, last := u.outboxPage(1), u.outboxPage(total)
	index.Current, index.First, index.Last = first, first, last

	pages := make([]OrderedCollectionPage, 0, total)
	for n := 1; n <= total; n++ {
		lo, hi := (n-1)*perPage, min(n*perPage, len(sorted))
		page := OrderedCollectionPage{
			Context:      ContextActivityStreams,
			ID:           u.outboxPage(n),
			Type:         "OrderedCollectionPage",
			PartOf:       u.outbox(),
			TotalItems:   len(sorted),
			Current:      first,
			First:        first,
			Last:         last,
			OrderedItems: BuildActivities(cfg, sorted[lo:hi]),
		}
		if n > 1 {
			page.Prev = u.outboxPage(n - 1)
		}
		if n < total {
			page.Next = u.outboxPage(n + 1)
		}
		pages = append(pages, page)
	}
	return index, pages
}

// BuildFollowing returns the following collection.
func BuildFollowing(cfg *config.Config) OrderedCollection {
	u := urls{cfg}
	items := make([]Follow, 0, len(cfg.ActivityPub.Following))
	for _, f := range cfg.ActivityPub.Following {
		items = append(items, Follow{Type: "Follow", Actor: u.profile(), Object: f})
	}
	return OrderedCollection{
		Context:    ContextActivityStreams,
		ID:         u.following(),
		Type:       "OrderedCollection",
		Summary:    "Who " + AddressName(cfg) + " is following",
		TotalItems: len(items),
		Items:      items,
	}
}
