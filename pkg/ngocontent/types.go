package ngocontent

import "time"

// Entity is implemented by every record kind that may reference an image.
type Entity interface {
	EntityID() int64
	SetEntityID(id int64)
	// AssetRef returns the locator of the attached image, empty when none.
	AssetRef() string
	SetAssetRef(locator string)
	Touch(now time.Time)
}

// Category groups news and activities on the site.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Category) EntityID() int64            { return c.ID }
func (c *Category) SetEntityID(id int64)       { c.ID = id }
func (c *Category) AssetRef() string           { return c.Image }
func (c *Category) SetAssetRef(locator string) { c.Image = locator }

func (c *Category) Touch(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

// Testimonial is a short statement from someone the organization helped.
type Testimonial struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Testimonial) EntityID() int64            { return t.ID }
func (t *Testimonial) SetEntityID(id int64)       { t.ID = id }
func (t *Testimonial) AssetRef() string           { return t.Image }
func (t *Testimonial) SetAssetRef(locator string) { t.Image = locator }

func (t *Testimonial) Touch(now time.Time) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

// Member is a person shown on the organization's team page.
type Member struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	FacebookURL  string    `json:"facebook_url"`
	InstagramURL string    `json:"instagram_url"`
	LinkedinURL  string    `json:"linkedin_url"`
	Image        string    `json:"image"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (m *Member) EntityID() int64            { return m.ID }
func (m *Member) SetEntityID(id int64)       { m.ID = id }
func (m *Member) AssetRef() string           { return m.Image }
func (m *Member) SetAssetRef(locator string) { m.Image = locator }

func (m *Member) Touch(now time.Time) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}

// PendingAsset is an uploaded file that has not been written to a blob store yet.
type PendingAsset struct {
	FileName    string
	ContentType string
	Data        []byte
}

// IsEmpty reports whether the asset carries no bytes. A nil asset is empty.
func (a *PendingAsset) IsEmpty() bool {
	return a == nil || len(a.Data) == 0
}

// AssetChangeKind is the caller's intent for the image on update.
type AssetChangeKind int

const (
	// AssetKeep leaves the current image untouched.
	AssetKeep AssetChangeKind = iota
	// AssetReplace writes a new image and releases the previous one.
	AssetReplace
	// AssetRemove clears the reference and releases the image.
	AssetRemove
)

// AssetChange describes what an update does with the attached image.
type AssetChange struct {
	Kind  AssetChangeKind
	Asset *PendingAsset
}

// KeepAsset returns the no-op change.
func KeepAsset() AssetChange { return AssetChange{Kind: AssetKeep} }

// ReplaceAsset returns a replace change. An empty asset degrades to KeepAsset,
// removal must always be requested explicitly.
func ReplaceAsset(asset *PendingAsset) AssetChange {
	if asset.IsEmpty() {
		return KeepAsset()
	}
	return AssetChange{Kind: AssetReplace, Asset: asset}
}

// RemoveAsset returns the explicit removal change.
func RemoveAsset() AssetChange { return AssetChange{Kind: AssetRemove} }

// PageMeta describes where a page sits within a collection.
type PageMeta struct {
	CurrentPage int    `json:"current_page"`
	TotalItems  int    `json:"total_items"`
	TotalPages  int    `json:"total_pages"`
	PrevPage    string `json:"prev_page"`
	NextPage    string `json:"next_page"`
}

// Page is one page of projected items.
type Page[T any] struct {
	PageMeta
	Items []T `json:"items"`
}

// TestimonialSummary is the listing projection of a Testimonial.
type TestimonialSummary struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Image   string `json:"image"`
}

// MemberSummary is the listing projection of a Member.
type MemberSummary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}
