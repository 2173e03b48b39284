package parser

import (
	semver "github.com/Masterminds/semver/v3"

	"github.com/theta-lang/theta/internal/theta"
)

// feature is a versioned grammar production: its name and the minimum
// language version a module must declare to use it.
type feature struct {
	name    string
	minimum *semver.Version
}

var (
	featureEnum  = feature{"enum", semver.MustParse("1.1.0")}
	featureFixed = feature{"fixed", semver.MustParse("1.1.0")}
	featureUUID  = feature{"uuid", semver.MustParse("1.1.0")}
)

// require checks the module's declared language version against a gated
// feature's minimum once the grammar has committed to the construct. The
// failure carries the feature name and both versions, so it is never
// mistaken for a plain syntax error.
func (p *Parser) require(f feature) error {
	if p.meta.LanguageVersion.LessThan(f.minimum) {
		return &theta.UnsupportedVersion{
			Metadata: p.meta,
			Feature:  f.name,
			Required: f.minimum,
			Actual:   p.meta.LanguageVersion,
		}
	}
	return nil
}
