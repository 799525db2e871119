package domain

// DocumentText is the result of a whole-document extraction: the
// concatenated text of every page that decoded, plus the 1-indexed
// numbers of pages that did not.
type DocumentText struct {
	Text        string `json:"text"`
	FailedPages []int  `json:"failed_pages"`
}

// PageText is the decoded text of one page within a range extraction.
type PageText struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// RangeText is the result of a page-range extraction. Pages appear in
// ascending page-number order; failed pages are listed separately and
// have no entry in Pages.
type RangeText struct {
	Pages       []PageText `json:"pages"`
	FailedPages []int      `json:"failed_pages"`
}

// DocumentInfo carries document-level metadata. The optional fields are
// nil when the source document does not carry them; an empty string
// means present but empty.
type DocumentInfo struct {
	PageCount int     `json:"page_count"`
	Encrypted bool    `json:"encrypted"`
	Title     *string `json:"title,omitempty"`
	Author    *string `json:"author,omitempty"`
	Subject   *string `json:"subject,omitempty"`
	Creator   *string `json:"creator,omitempty"`
}
