// internal/app/store/storeutil/storeutil.go
package storeutil

import "go.mongodb.org/mongo-driver/mongo/options"

// Page is a normalized 1-based page request.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps a requested page: number below 1 becomes 1, size below 1
// becomes defaultSize, and size above maxSize becomes maxSize.
func NewPage(number, size, defaultSize, maxSize int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return Page{Number: number, Size: size}
}

// FindOptions returns skip/limit options for the page.
func (p Page) FindOptions() *options.FindOptions {
	return options.Find().
		SetSkip(int64((p.Number - 1) * p.Size)).
		SetLimit(int64(p.Size))
}

// TotalPages is how many pages of p.Size cover total items, never less than 1.
func (p Page) TotalPages(total int64) int {
	n := int((total + int64(p.Size) - 1) / int64(p.Size))
	if n < 1 {
		return 1
	}
	return n
}
