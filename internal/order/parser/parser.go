package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/burgerboard/api/internal/order"
)

// Leading quantity: "2x", "2 x" or a bare "2 ".
var quantityRe = regexp.MustCompile(`^(\d+)\s*x(?:\s+|$)|^(\d+)\s+`)

// A new line item inside a single block starts with ", <n>" or " y <n>".
var fragmentBreakRe = regexp.MustCompile(`(?i)(?:,|\s+y)\s+(\d+\s*x?)\s`)

type keyword int

const (
	kwNone keyword = iota
	kwSize
	kwCombo
	kwRemoval
	kwAddition
	kwWith
	kwIn
)

// Seed vocabulary. Extend here when new phrasing shows up in incoming orders.
var keywords = map[string]keyword{
	"simple":    kwSize,
	"doble":     kwSize,
	"triple":    kwSize,
	"combo":     kwCombo,
	"sin":       kwRemoval,
	"agregado":  kwAddition,
	"agregados": kwAddition,
	"extra":     kwAddition,
	"extras":    kwAddition,
	"adicional": kwAddition,
	"con":       kwWith,
	"en":        kwIn,
}

// Phrases that "con" does not turn into an addition when the line is a combo:
// the combo already includes fries.
var comboSides = map[string]bool{
	"papas":        true,
	"papas fritas": true,
}

// Parse converts a free-text order block into items. Lines, ";" and
// ", <n>" / " y <n>" boundaries separate items. It returns nil when no
// fragment yields a burger name.
func Parse(text string) []order.Item {
	return ParseFragments(splitBlock(text))
}

// ParseFragments converts pre-split fragments, one burger description each.
// Fragments without a recognizable burger name are dropped.
func ParseFragments(fragments []string) []order.Item {
	var items []order.Item
	for _, f := range fragments {
		if it, ok := parseFragment(f); ok {
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		return nil
	}
	return items
}

func splitBlock(text string) []string {
	var out []string
	for _, line := range strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == ';' }) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		start := 0
		for _, m := range fragmentBreakRe.FindAllStringSubmatchIndex(line, -1) {
			out = append(out, strings.TrimSpace(line[start:m[0]]))
			start = m[2]
		}
		out = append(out, strings.TrimSpace(line[start:]))
	}
	return out
}

type phraseMode int

const (
	modeName phraseMode = iota
	modeRemoval
	modeAddition
	modeWith
)

type fragmentState struct {
	name      []string
	phrase    []string
	mode      phraseMode
	removals  []string
	additions []string
	withs     []string
}

// flush closes the modifier phrase being collected, if any.
func (s *fragmentState) flush() {
	if len(s.phrase) == 0 {
		return
	}
	p := strings.Join(s.phrase, " ")
	s.phrase = s.phrase[:0]
	switch s.mode {
	case modeRemoval:
		s.removals = append(s.removals, p)
	case modeAddition:
		s.additions = append(s.additions, p)
	case modeWith:
		s.withs = append(s.withs, p)
	}
}

func parseFragment(fragment string) (order.Item, bool) {
	text := strings.ToLower(strings.TrimSpace(fragment))
	if text == "" {
		return order.Item{}, false
	}

	qty := 1
	if m := quantityRe.FindStringSubmatch(text); m != nil {
		n := m[1]
		if n == "" {
			n = m[2]
		}
		if v, err := strconv.Atoi(n); err == nil && v > 0 {
			qty = v
		}
		text = text[len(m[0]):]
	}

	var st fragmentState
	var triple, doble, combo bool

	tokens := strings.Fields(strings.ReplaceAll(text, ",", " , "))
	for i, tok := range tokens {
		switch keywords[tok] {
		case kwSize:
			// "con doble cheddar": a size opening a modifier phrase qualifies
			// the ingredient, not the patty.
			if st.mode != modeName && len(st.phrase) == 0 && i+1 < len(tokens) && keywords[tokens[i+1]] == kwNone && tokens[i+1] != "," {
				st.phrase = append(st.phrase, tok)
				continue
			}
			st.flush()
			switch tok {
			case order.PattyTriple:
				triple = true
			case order.PattyDoble:
				doble = true
			}
			continue
		case kwCombo:
			st.flush()
			combo = true
			continue
		case kwRemoval:
			st.flush()
			st.mode = modeRemoval
			continue
		case kwAddition:
			st.flush()
			st.mode = modeAddition
			continue
		case kwWith:
			st.flush()
			st.mode = modeWith
			continue
		case kwIn:
			st.flush()
			st.mode = modeName
		}

		if st.mode == modeName {
			if tok != "," {
				st.name = append(st.name, tok)
			}
			continue
		}
		if tok == "," || tok == "y" {
			st.flush()
			continue
		}
		st.phrase = append(st.phrase, tok)
	}
	st.flush()

	burgerType := strings.Join(st.name, " ")
	if burgerType == "" || isNumber(burgerType) {
		return order.Item{}, false
	}

	size := order.PattySimple
	switch {
	case triple:
		size = order.PattyTriple
	case doble:
		size = order.PattyDoble
	}

	additions := st.additions
	for _, w := range st.withs {
		if combo && comboSides[w] {
			continue
		}
		additions = append(additions, w)
	}

	return order.Item{
		BurgerType: burgerType,
		PattySize:  size,
		Combo:      combo,
		Additions:  additions,
		Removals:   st.removals,
		Quantity:   qty,
	}, true
}

func isNumber(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
