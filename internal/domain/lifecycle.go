package domain

import (
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// BusinessField names a mutable listing field.
type BusinessField string

const (
	FieldName         BusinessField = "name"
	FieldSlug         BusinessField = "slug"
	FieldDescription  BusinessField = "description"
	FieldCategory     BusinessField = "category"
	FieldAddress      BusinessField = "address"
	FieldCity         BusinessField = "city"
	FieldWhatsApp     BusinessField = "whatsapp"
	FieldPhone        BusinessField = "phone"
	FieldWebsiteURL   BusinessField = "website_url"
	FieldSocialLinks  BusinessField = "social_links"
	FieldGeoLat       BusinessField = "geo_lat"
	FieldGeoLng       BusinessField = "geo_lng"
	FieldLogoURL      BusinessField = "logo_url"
	FieldMediaGallery BusinessField = "media_gallery"
	FieldRating       BusinessField = "rating"
)

// FieldSet is a set of listing fields.
type FieldSet map[BusinessField]bool

func NewFieldSet(fields ...BusinessField) FieldSet {
	s := make(FieldSet, len(fields))
	for _, f := range fields {
		s[f] = true
	}
	return s
}

func (s FieldSet) Has(f BusinessField) bool { return s[f] }

// Intersects reports whether s and other share a field.
func (s FieldSet) Intersects(other FieldSet) bool {
	for f := range s {
		if other[f] {
			return true
		}
	}
	return false
}

// SignificantFields are the fields whose change by an owner sends a listing back to moderation.
var SignificantFields = NewFieldSet(
	FieldName,
	FieldSlug,
	FieldDescription,
	FieldCategory,
	FieldAddress,
	FieldCity,
	FieldWhatsApp,
	FieldPhone,
	FieldWebsiteURL,
)

// Actor is the code path a listing update arrives through.
type Actor int

const (
	ActorOwner Actor = iota
	ActorAdmin
)

// NextStatus computes a listing's status after an update. An explicit status is used verbatim;
// otherwise an owner changing a significant field reverts the listing to PENDING.
func NextStatus(current Status, actor Actor, explicit *Status, changed FieldSet) Status {
	if explicit != nil {
		return *explicit
	}
	if actor == ActorOwner && changed.Intersects(SignificantFields) {
		return StatusPending
	}
	return current
}

// Optional is a value that may or may not be present in a partial update.
// A JSON null counts as present and clears the field.
type Optional[T any] struct {
	Set   bool
	Value T
}

func Some[T any](v T) Optional[T] { return Optional[T]{Set: true, Value: v} }

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	var zero T
	o.Value = zero
	if string(b) == "null" {
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// FloatField is a leniently parsed number. Unparsable or out-of-range input becomes null
// instead of failing the update.
type FloatField struct {
	Set   bool
	Value *float64
}

func SomeFloat(v float64) FloatField { return FloatField{Set: true, Value: &v} }

// RawFloat builds a FloatField from its input text.
func RawFloat(raw string) FloatField { return FloatField{Set: true, Value: ParseLenientFloat(raw)} }

func (f *FloatField) UnmarshalJSON(b []byte) error {
	f.Set = true
	raw := strings.TrimSpace(string(b))
	if unq, err := strconv.Unquote(raw); err == nil {
		raw = unq
	}
	f.Value = ParseLenientFloat(raw)
	return nil
}

// ParseLenientFloat returns nil for empty, null or unparsable text.
func ParseLenientFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Within drops values outside [lo, hi].
func (f FloatField) Within(lo, hi float64) *float64 {
	if f.Value == nil || *f.Value < lo || *f.Value > hi {
		return nil
	}
	v := *f.Value
	return &v
}

// Accepted ranges for the numeric listing fields.
const (
	MinLat, MaxLat       = -90.0, 90.0
	MinLng, MaxLng       = -180.0, 180.0
	MinRating, MaxRating = 0.0, 5.0
)

// BusinessPatch is a partial listing update. Status is only populated on the admin path.
type BusinessPatch struct {
	Name         Optional[string]      `json:"name"`
	Slug         Optional[string]      `json:"slug"`
	Description  Optional[string]      `json:"description"`
	CategoryID   Optional[string]      `json:"categoryId"`
	Address      Optional[string]      `json:"address"`
	City         Optional[string]      `json:"city"`
	WhatsApp     Optional[string]      `json:"whatsapp"`
	Phone        Optional[string]      `json:"phone"`
	WebsiteURL   Optional[string]      `json:"websiteUrl"`
	SocialLinks  Optional[SocialLinks] `json:"socialLinks"`
	GeoLat       FloatField            `json:"geoLat"`
	GeoLng       FloatField            `json:"geoLng"`
	LogoURL      Optional[string]      `json:"logoUrl"`
	MediaGallery Optional[StringList]  `json:"mediaGallery"`
	Rating       FloatField            `json:"rating"`
	Status       *Status               `json:"-"`
}

// ApplyTo merges the supplied fields into b and returns the fields whose value changed.
func (p BusinessPatch) ApplyTo(b *Business) FieldSet {
	changed := FieldSet{}
	setString(&b.Name, p.Name, FieldName, changed)
	setString(&b.Slug, p.Slug, FieldSlug, changed)
	setString(&b.Description, p.Description, FieldDescription, changed)
	setString(&b.CategoryID, p.CategoryID, FieldCategory, changed)
	setString(&b.Address, p.Address, FieldAddress, changed)
	setString(&b.City, p.City, FieldCity, changed)
	setString(&b.WhatsApp, p.WhatsApp, FieldWhatsApp, changed)
	setString(&b.Phone, p.Phone, FieldPhone, changed)
	setString(&b.WebsiteURL, p.WebsiteURL, FieldWebsiteURL, changed)
	setString(&b.LogoURL, p.LogoURL, FieldLogoURL, changed)

	if p.SocialLinks.Set && !maps.Equal(b.SocialLinks, p.SocialLinks.Value) {
		b.SocialLinks = p.SocialLinks.Value
		changed[FieldSocialLinks] = true
	}
	if p.MediaGallery.Set && !slices.Equal(b.MediaGallery, p.MediaGallery.Value) {
		b.MediaGallery = p.MediaGallery.Value
		changed[FieldMediaGallery] = true
	}

	setFloat(&b.GeoLat, p.GeoLat, MinLat, MaxLat, FieldGeoLat, changed)
	setFloat(&b.GeoLng, p.GeoLng, MinLng, MaxLng, FieldGeoLng, changed)
	setFloat(&b.Rating, p.Rating, MinRating, MaxRating, FieldRating, changed)
	return changed
}

func setString(dst *string, o Optional[string], f BusinessField, changed FieldSet) {
	if !o.Set {
		return
	}
	v := strings.TrimSpace(o.Value)
	if *dst != v {
		*dst = v
		changed[f] = true
	}
}

func setFloat(dst **float64, ff FloatField, lo, hi float64, f BusinessField, changed FieldSet) {
	if !ff.Set {
		return
	}
	v := ff.Within(lo, hi)
	if !floatEqual(*dst, v) {
		*dst = v
		changed[f] = true
	}
}

func floatEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
