package sqldb

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/tendant/ngo-content/pkg/ngocontent"
)

type categoryRow struct {
	bun.BaseModel `bun:"table:categories"`

	ID          int64     `bun:"id,pk,autoincrement"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description,type:text,notnull"`
	Image       string    `bun:"image,type:text,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

type testimonialRow struct {
	bun.BaseModel `bun:"table:testimonials"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Content   string    `bun:"content,type:text,notnull"`
	Image     string    `bun:"image,type:text,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

type memberRow struct {
	bun.BaseModel `bun:"table:members"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Name         string    `bun:"name,notnull"`
	Description  string    `bun:"description,type:text,notnull"`
	FacebookURL  string    `bun:"facebook_url,type:text,notnull"`
	InstagramURL string    `bun:"instagram_url,type:text,notnull"`
	LinkedinURL  string    `bun:"linkedin_url,type:text,notnull"`
	Image        string    `bun:"image,type:text,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

// models lists every table created by Migrate
var models = []any{
	(*categoryRow)(nil),
	(*testimonialRow)(nil),
	(*memberRow)(nil),
}

// mapping converts between an entity and its row model
type mapping[E ngocontent.Entity, R any] struct {
	table   string
	toRow   func(E) *R
	fromRow func(*R) E
}

var categories = mapping[*ngocontent.Category, categoryRow]{
	table: "categories",
	toRow: func(c *ngocontent.Category) *categoryRow {
		return &categoryRow{
			ID: c.ID, Name: c.Name, Description: c.Description, Image: c.Image,
			CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
		}
	},
	fromRow: func(r *categoryRow) *ngocontent.Category {
		return &ngocontent.Category{
			ID: r.ID, Name: r.Name, Description: r.Description, Image: r.Image,
			CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
		}
	},
}

var testimonials = mapping[*ngocontent.Testimonial, testimonialRow]{
	table: "testimonials",
	toRow: func(t *ngocontent.Testimonial) *testimonialRow {
		return &testimonialRow{
			ID: t.ID, Name: t.Name, Content: t.Content, Image: t.Image,
			CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
		}
	},
	fromRow: func(r *testimonialRow) *ngocontent.Testimonial {
		return &ngocontent.Testimonial{
			ID: r.ID, Name: r.Name, Content: r.Content, Image: r.Image,
			CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
		}
	},
}

var members = mapping[*ngocontent.Member, memberRow]{
	table: "members",
	toRow: func(m *ngocontent.Member) *memberRow {
		return &memberRow{
			ID: m.ID, Name: m.Name, Description: m.Description,
			FacebookURL: m.FacebookURL, InstagramURL: m.InstagramURL, LinkedinURL: m.LinkedinURL,
			Image: m.Image, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
		}
	},
	fromRow: func(r *memberRow) *ngocontent.Member {
		return &ngocontent.Member{
			ID: r.ID, Name: r.Name, Description: r.Description,
			FacebookURL: r.FacebookURL, InstagramURL: r.InstagramURL, LinkedinURL: r.LinkedinURL,
			Image: r.Image, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
		}
	},
}
