package document

// Document is a piece of page content together with its origin metadata
type Document struct {
	PageContent string            `json:"page_content"`
	Metadata    map[string]string `json:"metadata"`
}

// Metadata keys populated by the loader
const (
	MetaSource      = "source"
	MetaTitle       = "title"
	MetaDescription = "description"
	MetaLanguage    = "language"
)

// Source returns the URL the document was loaded from
func (d Document) Source() string {
	return d.Metadata[MetaSource]
}
