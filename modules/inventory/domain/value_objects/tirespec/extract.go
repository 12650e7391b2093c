package tirespec

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Confidence weights per extracted field. Width and rim diameter carry the
// most weight; load index and speed rating are frequently absent in supplier
// catalogs and must not sink a complete size match below the routing
// threshold on their own.
const (
	weightWidth        = 25
	weightRimDiameter  = 25
	weightAspectRatio  = 20
	weightConstruction = 10
	weightLoadIndex    = 10
	weightSpeedRating  = 10

	ambiguityPenalty = 10
	canonicalPenalty = 5
)

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Supplier boilerplate that carries no spec information.
var boilerplateTokens = map[string]bool{
	"NEUMATICO":  true,
	"NEUMATICOS": true,
	"CUBIERTA":   true,
	"CUBIERTAS":  true,
	"LLANTA":     true,
	"TIRE":       true,
	"TYRE":       true,
	"NUEVO":      true,
	"NUEVA":      true,
}

// sizeRule is one ordered pattern for the dimensional part of a description.
// Rules are tried most-specific first; the first one matching the minimum
// viable subset (width + rim diameter) wins.
type sizeRule struct {
	name         string
	re           *regexp.Regexp
	width        int
	aspectRatio  int
	construction int
	rimDiameter  int
}

var sizeRules = []sizeRule{
	// 205/55R16, 205/55 ZR 16, 205/55R-16
	{
		name:         "metric-construction",
		re:           regexp.MustCompile(`(\d{3})\s*/\s*(\d{2,3})\s*(ZR|R|D|B)\s*-?\s*(\d{2})\b`),
		width:        1,
		aspectRatio:  2,
		construction: 3,
		rimDiameter:  4,
	},
	// 205/55-16, 205-55-16, 205/55 16
	{
		name:        "metric-plain",
		re:          regexp.MustCompile(`(\d{3})\s*[/-]\s*(\d{2,3})\s*[-xX ]\s*(\d{2})\b`),
		width:       1,
		aspectRatio: 2,
		rimDiameter: 3,
	},
	// 650R16 and other profile-less commercial sizes
	{
		name:         "width-rim",
		re:           regexp.MustCompile(`(\d{3})\s*(R)\s*(\d{2})\b`),
		width:        1,
		construction: 2,
		rimDiameter:  3,
	},
}

// 91V, 104/102R, 121/120 S
var serviceRe = regexp.MustCompile(`\b(\d{2,3})(?:/\d{2,3})?\s*([A-HJ-NP-WY])\b`)

// Normalize uppercases, strips accents and boilerplate tokens, and collapses
// whitespace. Exposed so the classifier prompt and the extractor agree on the
// cleaned form.
func Normalize(raw string) string {
	s, _, err := transform.String(accentStripper, raw)
	if err != nil {
		s = raw
	}
	s = strings.ToUpper(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if boilerplateTokens[strings.Trim(w, ".,;")] {
			continue
		}
		kept = append(kept, w)
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

// Extract parses a free-text description into a Specification with
// Method=regex. It never fails: unmatchable input yields all-nil fields and
// confidence 0.
func Extract(raw string) Specification {
	spec := Specification{Method: MethodRegex}

	text := Normalize(raw)
	if text == "" {
		return spec
	}

	penalty := 0
	matchEnd := -1
	for _, rule := range sizeRules {
		locs := rule.re.FindAllStringSubmatchIndex(text, -1)
		if len(locs) == 0 {
			continue
		}
		// Two plausible size matches: keep the left-most and pay a
		// confidence penalty instead of failing.
		if len(locs) > 1 {
			penalty += ambiguityPenalty
		}
		m := rule.re.FindStringSubmatch(text[locs[0][0]:])
		spec.Width = atoiPtr(m[rule.width])
		if rule.aspectRatio > 0 {
			spec.AspectRatio = atoiPtr(m[rule.aspectRatio])
		}
		if rule.construction > 0 && m[rule.construction] != "" {
			spec.Construction = StrPtr(m[rule.construction])
		}
		spec.RimDiameter = atoiPtr(m[rule.rimDiameter])
		matchEnd = locs[0][1]
		break
	}

	if spec.Width == nil || spec.RimDiameter == nil {
		// Below the minimum viable subset: report nothing rather than a
		// half-parsed size.
		return Specification{Method: MethodRegex}
	}

	if matchEnd >= 0 && matchEnd < len(text) {
		if m := serviceRe.FindStringSubmatch(text[matchEnd:]); m != nil {
			if li, err := strconv.Atoi(m[1]); err == nil && li >= 50 && li <= 199 {
				spec.LoadIndex = IntPtr(li)
				spec.SpeedRating = StrPtr(m[2])
			}
		}
	}

	if !strings.Contains(text, canonicalSize(spec)) {
		penalty += canonicalPenalty
	}

	spec.Confidence = clampConfidence(score(spec) - penalty)
	return spec
}

func score(spec Specification) int {
	total := 0
	if spec.Width != nil {
		total += weightWidth
	}
	if spec.RimDiameter != nil {
		total += weightRimDiameter
	}
	if spec.AspectRatio != nil {
		total += weightAspectRatio
	}
	if spec.Construction != nil {
		total += weightConstruction
	}
	if spec.LoadIndex != nil {
		total += weightLoadIndex
	}
	if spec.SpeedRating != nil {
		total += weightSpeedRating
	}
	return total
}

// canonicalSize reconstructs the canonical dimensional string, e.g.
// "205/55R16". Comparing it against the cleaned input catches sloppy matches
// (odd separators, stray spacing) that deserve a lower score.
func canonicalSize(spec Specification) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(*spec.Width))
	if spec.AspectRatio != nil {
		b.WriteString("/")
		b.WriteString(strconv.Itoa(*spec.AspectRatio))
	}
	if spec.Construction != nil {
		b.WriteString(*spec.Construction)
	}
	b.WriteString(strconv.Itoa(*spec.RimDiameter))
	return b.String()
}

func clampConfidence(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func atoiPtr(s string) *int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return IntPtr(v)
}
