// Package profile owns the personal-profile record exchanged with tags.
//
// Ownership boundary:
// - record shape and JSON field names
// - form normalization (trim, tag splitting)
// - emptiness rule and plain-text fallback string
package profile

import (
	"strings"
	"time"

	"github.com/filecoin-project/go-clock"
)

// TimestampLayout renders instants the way ISO-8601 UTC timestamps appear on tags.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// DefaultPlaceholder is written when a plain-text fallback has no contact field to use.
const DefaultPlaceholder = "NFC Profile"

// Record is the unit of interchange between the form layer and a tag.
type Record struct {
	Name      string   `json:"name,omitempty"`
	Title     string   `json:"title,omitempty"`
	Company   string   `json:"company,omitempty"`
	Email     string   `json:"email,omitempty"`
	Phone     string   `json:"phone,omitempty"`
	Address   string   `json:"address,omitempty"`
	Bio       string   `json:"bio,omitempty"`
	Tags      []string `json:"tags"`
	ImageData string   `json:"imageData,omitempty"`
	Timestamp string   `json:"timestamp"`
}

// Form is the raw form state supplied by the UI collaborator.
type Form struct {
	Name      string
	Title     string
	Company   string
	Email     string
	Phone     string
	Address   string
	Bio       string
	Tags      string
	ImageData string
}

// FromForm builds a normalized record from raw form values.
func FromForm(f Form) Record {
	return Record{
		Name:      f.Name,
		Title:     f.Title,
		Company:   f.Company,
		Email:     f.Email,
		Phone:     f.Phone,
		Address:   f.Address,
		Bio:       f.Bio,
		Tags:      ParseTags(f.Tags),
		ImageData: f.ImageData,
	}.Normalize()
}

// ParseTags splits a comma-separated tag string. Order and duplicates are kept.
func ParseTags(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Normalize returns a copy with trimmed fields and a non-nil tag list.
func (r Record) Normalize() Record {
	out := Record{
		Name:      strings.TrimSpace(r.Name),
		Title:     strings.TrimSpace(r.Title),
		Company:   strings.TrimSpace(r.Company),
		Email:     strings.TrimSpace(r.Email),
		Phone:     strings.TrimSpace(r.Phone),
		Address:   strings.TrimSpace(r.Address),
		Bio:       strings.TrimSpace(r.Bio),
		ImageData: strings.TrimSpace(r.ImageData),
		Timestamp: strings.TrimSpace(r.Timestamp),
		Tags:      make([]string, 0, len(r.Tags)),
	}
	for _, tag := range r.Tags {
		if v := strings.TrimSpace(tag); v != "" {
			out.Tags = append(out.Tags, v)
		}
	}
	return out
}

// IsEmpty reports whether every text field is blank and no image is attached.
// Tags alone never make a record writable.
func (r Record) IsEmpty() bool {
	for _, v := range []string{r.Name, r.Title, r.Company, r.Email, r.Phone, r.Address, r.Bio, r.ImageData} {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// FallbackText is the single human-readable line used when no JSON form fits.
func (r Record) FallbackText(placeholder string) string {
	for _, v := range []string{r.Name, r.Email, r.Phone} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	if strings.TrimSpace(placeholder) == "" {
		return DefaultPlaceholder
	}
	return placeholder
}

// Stamp returns a copy carrying the creation instant from clk.
func (r Record) Stamp(clk clock.Clock) Record {
	now := time.Now()
	if clk != nil {
		now = clk.Now()
	}
	r.Timestamp = now.UTC().Format(TimestampLayout)
	return r
}
