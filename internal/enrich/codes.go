package enrich

// Warning codes attached to a file's result. None of them stops the file.
const (
	WarnDOINotFound        = "DOI_NOT_FOUND"
	WarnCrossrefFail       = "CROSSREF_FAIL"
	WarnSemanticFail       = "SEMANTIC_FAIL"
	WarnCrossrefSearchFail = "CROSSREF_SEARCH_FAIL"
	WarnSemanticSearchFail = "SEMANTIC_SEARCH_FAIL"
	WarnOCRUnavailable     = "OCR_UNAVAILABLE"
	WarnMissingCore        = "MISSING_CORE"
)
