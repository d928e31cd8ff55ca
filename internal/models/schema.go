// Package models defines the domain types for filmtag.
package models

// Sentinel is substituted for any join cell that is absent or blank so that
// "both sides missing the same attribute" compares as a deliberate match
// rather than as two distinct empty strings.
const Sentinel = "NA"

// Columns with a fixed role in the pipeline.
const (
	ColSourceFile = "SourceFile"
	ColFileName   = "FileName"
	ColRecipe     = "filmsim"
)

// joinAttributes is the fixed, ordered set of camera settings that form the
// equality-join key between photo metadata and recipe definitions. The names
// are exiftool tag names and must match the CSV headers verbatim.
var joinAttributes = [...]string{
	"FilmMode",
	"DevelopmentDynamicRange",
	"ColorChromeEffect",
	"ColorChromeFXBlue",
	"GrainEffectSize",
	"GrainEffectRoughness",
	"ColorTemperature",
	"WhiteBalanceFineTune",
	"HighlightTone",
	"ShadowTone",
	"Saturation",
	"Sharpness",
	"NoiseReduction",
	"Clarity",
}

// JoinAttributes returns a fresh copy of the join-key column list.
func JoinAttributes() []string {
	out := make([]string, len(joinAttributes))
	copy(out, joinAttributes[:])
	return out
}

// PassthroughTags are extracted for reporting but play no role in matching.
var PassthroughTags = []string{"Make", "Model", "DateTimeOriginal", "Keywords", "WhiteBalance"}
