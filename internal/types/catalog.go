package types

import "time"

// FileType represents supported catalog file types
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
	FileTypeZIP  FileType = "zip"
)

// CatalogRow is one supplier catalog line after header mapping.
// Numeric fields are nil when the cell is blank or unparseable; the raw text
// is kept so the orchestrator can report it.
type CatalogRow struct {
	Index        int      `json:"rowIndex"` // zero-based, counts only non-empty lines
	SKU          string   `json:"sku"`
	GTIN         string   `json:"gtin"`
	Name         string   `json:"name"`
	Brand        string   `json:"brand,omitempty"`
	Description  string   `json:"description,omitempty"`
	Price        *int     `json:"price,omitempty"` // cents
	PriceRaw     string   `json:"priceRaw,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	MinQty       *int     `json:"minQty,omitempty"`
	MinQtyRaw    string   `json:"minQtyRaw,omitempty"`
	Stock        *int     `json:"stock,omitempty"`
	StockRaw     string   `json:"stockRaw,omitempty"`
	LeadTimeDays *int     `json:"leadTimeDays,omitempty"`
	LeadTimeRaw  string   `json:"leadTimeRaw,omitempty"`
	Missing      []string `json:"missing,omitempty"` // expected fields that were blank
}

// HasPrice reports whether the row carries a usable price
func (r CatalogRow) HasPrice() bool {
	return r.Price != nil
}

// IdentifierKind names the trade identifier family by digit count
type IdentifierKind string

const (
	KindGTIN8  IdentifierKind = "GTIN-8"
	KindGTIN12 IdentifierKind = "GTIN-12"
	KindGTIN13 IdentifierKind = "GTIN-13"
	KindGTIN14 IdentifierKind = "GTIN-14"
)

// IdentifierValidationResult is the outcome of validating a trade identifier.
// Normalized is set if and only if Valid is true.
type IdentifierValidationResult struct {
	Valid      bool           `json:"valid"`
	Normalized string         `json:"normalizedValue,omitempty"`
	Kind       IdentifierKind `json:"identifierKind,omitempty"`
	Reason     string         `json:"error,omitempty"`
}

// MatchMethod identifies the strategy that resolved a row
type MatchMethod string

const (
	MatchExactIdentifier MatchMethod = "EXACT_IDENTIFIER"
	MatchFuzzyName       MatchMethod = "FUZZY_NAME"
	MatchNone            MatchMethod = "NONE"
)

// MatchCandidate is a canonical product considered for a row
type MatchCandidate struct {
	ProductID string      `json:"productId"`
	Method    MatchMethod `json:"matchMethod"`
	Score     float64     `json:"score"`
}

// IssueTag is advisory metadata attached to a row for reviewers
type IssueTag string

const (
	IssueLowConfidence    IssueTag = "low-confidence"
	IssueNoGTIN           IssueTag = "no-gtin"
	IssueFuzzyMatch       IssueTag = "fuzzy-match"
	IssueMissingData      IssueTag = "missing-data"
	IssueDuplicateSuspect IssueTag = "duplicate-suspect"
	IssueNeedsReview      IssueTag = "needs-review"
)

// MatchOutcome is the accepted result for a row after scoring
type MatchOutcome struct {
	ProductID   *string     `json:"productId"`
	Method      MatchMethod `json:"matchMethod"`
	Confidence  float64     `json:"matchConfidence"`
	NeedsReview bool        `json:"needsReview"`
	Issues      []IssueTag  `json:"issues"`
	Errors      []string    `json:"errors"`
}

// HasIssue reports whether the outcome carries the given tag
func (o MatchOutcome) HasIssue(tag IssueTag) bool {
	for _, t := range o.Issues {
		if t == tag {
			return true
		}
	}
	return false
}

// Product is a canonical catalog record
type Product struct {
	ID          string    `json:"id"`
	GTIN        *string   `json:"gtin,omitempty"` // normalized to 14 digits
	Name        string    `json:"name"`
	Brand       string    `json:"brand,omitempty"`
	Description string    `json:"description,omitempty"`
	NetContent  string    `json:"netContent,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HasGTIN reports whether the product has a trade identifier
func (p Product) HasGTIN() bool {
	return p.GTIN != nil && *p.GTIN != ""
}

// MissingAttributes reports whether descriptive attributes are absent
func (p Product) MissingAttributes() bool {
	return p.Brand == "" || p.Description == "" || p.NetContent == ""
}

// ProductAttributes is the attribute set returned by the identifier registry
type ProductAttributes struct {
	Name        string `json:"name,omitempty"`
	Brand       string `json:"brand,omitempty"`
	Description string `json:"description,omitempty"`
	NetContent  string `json:"netContent,omitempty"`
}

// IsEmpty reports whether no attribute is set
func (a ProductAttributes) IsEmpty() bool {
	return a.Name == "" && a.Brand == "" && a.Description == "" && a.NetContent == ""
}

// SupplierItem links a supplier to a canonical product with its commercial terms.
// (SupplierID, ProductID) is unique.
type SupplierItem struct {
	ID           string    `json:"id"`
	SupplierID   string    `json:"supplierId"`
	ProductID    string    `json:"productId"`
	SupplierSKU  string    `json:"supplierSku"`
	UnitPrice    int       `json:"unitPrice"` // cents
	Currency     string    `json:"currency"`
	MinOrderQty  *int      `json:"minOrderQty,omitempty"`
	Stock        *int      `json:"stock,omitempty"`
	LeadTimeDays *int      `json:"leadTimeDays,omitempty"`
	Active       bool      `json:"active"`
	LastSyncAt   time.Time `json:"lastSyncAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to the given int
func IntPtr(i int) *int {
	return &i
}
