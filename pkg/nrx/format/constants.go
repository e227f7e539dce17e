// Package format pretty-prints NRX programs in a canonical layout.
// All formatting thresholds are configurable via these constants.
package format

// Line width - the target maximum line length
const MaxLineWidth = 92

// Threshold percentage (of MaxLineWidth) above which list and dictionary
// literals switch from inline to multiline formatting. Call arguments stay
// inline while they fit on the line.
const ThresholdSmallPercent = 50

var (
	ListThreshold = MaxLineWidth * ThresholdSmallPercent / 100 // 46 chars
	DictThreshold = MaxLineWidth * ThresholdSmallPercent / 100 // 46 chars
)

// Indentation - tabs for indentation, like gofmt
const (
	TabWidth     = 4
	IndentWidth  = TabWidth
	IndentString = "\t"
)

// Trailing comma on multiline lists and dictionaries
const TrailingCommaMultiline = true
