package ledmachine

// This file contains the words understood in commands that are not
// operators, colors, speeds and brightness levels.  Words are matched
// anywhere in the lower cased text so "deep purple" and "purple" both
// find purple

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/TeamNorCal/ledmachine/model"
)

type namedColor struct {
	matches func(text string) bool
	color   model.Color
}

func containsAll(words ...string) func(text string) bool {
	return func(text string) bool {
		for _, word := range words {
			if !strings.Contains(text, word) {
				return false
			}
		}
		return true
	}
}

func containsAny(words ...string) func(text string) bool {
	return func(text string) bool {
		for _, word := range words {
			if strings.Contains(text, word) {
				return true
			}
		}
		return false
	}
}

var (
	// namedColors is ordered, it decides the order of the colors in a fade
	namedColors = []namedColor{
		{containsAny("brown"), model.FromBytes(165, 42, 23)},
		{containsAll("shallow", "purple"), model.FromBytes(165, 42, 23)},
		{containsAll("deep", "purple"), model.FromBytes(255, 0, 70)},
		{containsAny("purple"), model.FromBytes(255, 0, 255)},
		{containsAny("pink"), model.FromBytes(255, 100, 120)},
		{containsAny("red"), model.FromBytes(255, 0, 0)},
		{containsAny("green"), model.FromBytes(0, 255, 0)},
		{containsAny("blue"), model.FromBytes(0, 0, 255)},
		{containsAny("orange"), model.FromBytes(255, 45, 0)},
		{containsAny("yellow"), model.FromBytes(255, 170, 0)},
		{containsAny("teal", "cyan"), model.FromBytes(0, 255, 255)},
		{containsAny("white"), model.White},
	}

	speedWords = []struct {
		word  string
		speed float64
	}{
		{"hyper", 4.0},
		{"sonic", 2.0},
		{"fast", 1.5},
		{"medium", 1.0},
		{"slow", 0.5},
		{"crawl", 0.25},
		{"limp", 0.1},
		{"still", 0.001},
		{"stop", 0.000000001},
	}

	dimWords = []struct {
		words []string
		level float64
	}{
		{[]string{"bright"}, 1.0},
		{[]string{"normal"}, DefaultDim},
		{[]string{"dim"}, 0.3 * DefaultDim},
		{[]string{"dark"}, 0.07 * DefaultDim},
		{[]string{"sleep"}, 0.01 * DefaultDim},
		{[]string{"skyline", "sky line", "sky-line"}, 0.005},
	}
)

// hasWord matches a whole word, unlike the substring matches used elsewhere
func hasWord(text string, word string) bool {
	for _, field := range strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) }) {
		if field == word {
			return true
		}
	}
	return false
}

// DefaultDim is the brightness used at startup and after the strip is
// switched off
const DefaultDim = 0.8

// ParseColors finds every color mentioned in text, hex words such as #ff8800
// or #f80 first followed by named colors.  Brown and shallow purple are the
// same color and are only listed once
func ParseColors(text string) (colors []model.Color) {
	text = strings.ToLower(text)
	for _, word := range strings.Fields(text) {
		if !strings.HasPrefix(word, "#") {
			continue
		}
		c, err := model.ParseHex(word)
		if err != nil {
			logger.Warn("could not parse color", "word", word, "error", err.Error())
			continue
		}
		colors = append(colors, c)
	}

	brownSeen := false
	for i, named := range namedColors {
		if !named.matches(text) {
			continue
		}
		if i < 2 {
			if brownSeen {
				continue
			}
			brownSeen = true
		}
		colors = append(colors, named.color)
	}
	return colors
}

// NumberAfter returns the number following word in text, "speed 2.5"
// gives 2.5 for the word speed
func NumberAfter(text string, word string) (number float64, isPresent bool) {
	fields := strings.Fields(text)
	for i, field := range fields {
		if field != word || i+1 >= len(fields) {
			continue
		}
		number, errGo := strconv.ParseFloat(fields[i+1], 64)
		if errGo != nil || math.IsNaN(number) || math.IsInf(number, 0) {
			continue
		}
		return number, true
	}
	return 0, false
}

// SpeedMultiplier looks for "speed N" and then the speed words
func SpeedMultiplier(text string) (speed float64, isPresent bool) {
	if speed, isPresent = NumberAfter(text, "speed"); isPresent {
		return speed, true
	}
	for _, sw := range speedWords {
		if strings.Contains(text, sw.word) {
			return sw.speed, true
		}
	}
	return 0, false
}

// DimLevel looks for the brightness words
func DimLevel(text string) (level float64, isPresent bool) {
	for _, dw := range dimWords {
		for _, word := range dw.words {
			if strings.Contains(text, word) {
				return dw.level, true
			}
		}
	}
	return 0, false
}
