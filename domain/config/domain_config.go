package config

// DomainConfig holds the limits enforced by entity constructors.
type DomainConfig struct {
	// Units
	MaxUnitNameLength    int
	MaxEchelonNameLength int

	// Raw facts and bullet points
	MaxContentLength     int
	MaxSourceTypeLength  int
	MaxSourcesPerBullet  int
	DefaultRawSourceType string
	RegeneratedRefSource string

	// CCIRs
	MaxKeywordsPerCCIR       int
	MaxKeywordLength         int
	MaxCCIRDescriptionLength int
}

// DefaultDomainConfig returns the limits used when none are configured.
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxUnitNameLength:    200,
		MaxEchelonNameLength: 50,

		MaxContentLength:     10000,
		MaxSourceTypeLength:  50,
		MaxSourcesPerBullet:  500,
		DefaultRawSourceType: "sitrep",
		RegeneratedRefSource: "raw_source",

		MaxKeywordsPerCCIR:       20,
		MaxKeywordLength:         100,
		MaxCCIRDescriptionLength: 2000,
	}
}
