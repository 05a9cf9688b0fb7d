package domain

import "math"

// BookFormat is a purchase format offered for a book.
type BookFormat string

// Formats a book may be offered in.
const (
	FormatHardcover BookFormat = "Hardcover"
	FormatPaperback BookFormat = "Paperback"
	FormatKindle    BookFormat = "Kindle"
	FormatAudiobook BookFormat = "Audiobook"
	FormatEBook     BookFormat = "eBook"
)

// ValidFormats returns the set of recognized book formats.
func ValidFormats() []BookFormat {
	return []BookFormat{FormatHardcover, FormatPaperback, FormatKindle, FormatAudiobook, FormatEBook}
}

// IsValidFormat checks whether the given format string is a recognized format.
func IsValidFormat(format BookFormat) bool {
	for _, f := range ValidFormats() {
		if f == format {
			return true
		}
	}
	return false
}

// Dimensions holds the physical dimensions of a printed book.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

// SeriesInfo describes a book's position within a series.
type SeriesInfo struct {
	Name       string `json:"name"`
	BookNumber int    `json:"book_number"`
	TotalBooks int    `json:"total_books"`
}

// Book is an immutable catalog record. Books are loaded once at startup from
// the embedded category datasets and never mutated afterwards.
type Book struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Author        string       `json:"author"`
	Category      string       `json:"category"`
	Price         float64      `json:"price"`
	OriginalPrice float64      `json:"original_price,omitempty"`
	Rating        float64      `json:"rating"`
	Reviews       int          `json:"reviews"`
	Image         string       `json:"image"`
	Description   string       `json:"description"`
	ISBN          string       `json:"isbn"`
	Pages         int          `json:"pages"`
	Publisher     string       `json:"publisher"`
	PublishDate   string       `json:"publish_date"`
	InStock       bool         `json:"in_stock"`
	Featured      bool         `json:"featured,omitempty"`
	Language      string       `json:"language"`
	Formats       []BookFormat `json:"formats"`
	Dimensions    *Dimensions  `json:"dimensions,omitempty"`
	Weight        string       `json:"weight,omitempty"`
	Edition       string       `json:"edition,omitempty"`
	Awards        []string     `json:"awards,omitempty"`
	Genres        []string     `json:"genres,omitempty"`
	AgeRange      string       `json:"age_range,omitempty"`
	Translator    string       `json:"translator,omitempty"`
	Series        *SeriesInfo  `json:"series,omitempty"`
	AudioLength   string       `json:"audio_length,omitempty"`
	Narrator      string       `json:"narrator,omitempty"`
}

// OffersFormat reports whether the book is offered in the given format.
func (b *Book) OffersFormat(format BookFormat) bool {
	for _, f := range b.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// DiscountPercent returns the rounded discount percentage against the
// original price, or 0 when the book is not discounted.
func (b *Book) DiscountPercent() int {
	if b.OriginalPrice <= 0 || b.OriginalPrice <= b.Price {
		return 0
	}
	return int(math.Round((b.OriginalPrice - b.Price) / b.OriginalPrice * 100))
}

// Category is a browsable catalog section.
type Category struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PriceRange is a selectable price band with inclusive bounds.
type PriceRange struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Contains reports whether the price falls within the range, bounds inclusive.
func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// CategoryAll is the sentinel category filter that passes every book.
const CategoryAll = "all"

// Filters holds the catalog filter state. The zero value passes every book.
type Filters struct {
	// Category is a category slug, or CategoryAll.
	Category string `json:"category"`
	// PriceRanges holds selected price-range labels, OR-combined. Empty
	// means no price constraint.
	PriceRanges []string `json:"price_ranges"`
	// MinRating excludes books rated below it. Zero means no constraint.
	MinRating float64 `json:"min_rating"`
}

// SortOption selects the ordering applied after filtering.
type SortOption string

const (
	// SortFeatured preserves catalog order.
	SortFeatured  SortOption = "featured"
	SortPriceLow  SortOption = "price-low"
	SortPriceHigh SortOption = "price-high"
	SortRating    SortOption = "rating"
	SortTitle     SortOption = "title"
)

// IsValidSort checks whether the given sort option is recognized.
func IsValidSort(s SortOption) bool {
	switch s {
	case SortFeatured, SortPriceLow, SortPriceHigh, SortRating, SortTitle:
		return true
	}
	return false
}
