// Package language holds the local table of supported Ghanaian languages and
// a keyword-based detector used when the voice service is unreachable.
package language

import (
	"fmt"
	"strings"
)

type Language string

const (
	English Language = "en"
	Twi     Language = "twi"
	Ga      Language = "ga"
	Ewe     Language = "ewe"
)

// Info describes speech settings for a language.
type Info struct {
	Code   Language
	Locale string
	Name   string
	Rate   float64
	Pitch  float64
}

var (
	englishKeywords = []string{
		"paracetamol", "acetaminophen", "ibuprofen", "aspirin", "amoxicillin",
		"penicillin", "vitamin", "antibiotic", "painkiller", "fever", "headache",
		"medicine", "drug", "medication", "pill", "tablet", "syrup", "injection",
	}
	englishPhrases = []string{
		"Search for paracetamol", "Find ibuprofen", "Look up aspirin", "What is amoxicillin",
		"Drug information for", "Medicine details", "Side effects of", "Dosage for",
	}
	akanPhrases = []string{"Hwehwɛ paracetamol", "Hwehwɛ ibuprofen", "Hwehwɛ aspirin", "Sɛn ne amoxicillin", "Aduru ho asɛm"}
	ewePhrases  = []string{"Dzɔ paracetamol", "Dzɔ ibuprofen", "Dzɔ aspirin", "Nye ne amoxicillin", "Atike kple asɛm"}
)

// Detection order matters: the first language with a keyword hit wins, and
// the drug names are only listed under English, which comes first.
var table = []struct {
	Info
	keywords []string
	phrases  []string
}{
	{
		Info:     Info{Code: English, Locale: "en-GH", Name: "English (Ghana)", Rate: 0.9, Pitch: 1.0},
		keywords: englishKeywords,
		phrases:  englishPhrases,
	},
	{
		Info:     Info{Code: Twi, Locale: "ak-GH", Name: "Twi (Akan)", Rate: 0.8, Pitch: 1.0},
		keywords: []string{"aduru", "yare", "tiri"},
		phrases:  akanPhrases,
	},
	{
		Info:     Info{Code: Ga, Locale: "gaa-GH", Name: "Ga", Rate: 0.8, Pitch: 1.0},
		keywords: []string{"aduru", "yare", "tiri"},
		phrases:  akanPhrases,
	},
	{
		Info:     Info{Code: Ewe, Locale: "ee-GH", Name: "Ewe", Rate: 0.8, Pitch: 1.0},
		keywords: []string{"atike", "yare", "tiri"},
		phrases:  ewePhrases,
	},
}

// All returns every supported language in detection order.
func All() []Info {
	out := make([]Info, len(table))
	for i, l := range table {
		out[i] = l.Info
	}

	return out
}

func Lookup(code Language) (Info, bool) {
	for _, l := range table {
		if l.Code == code {
			return l.Info, true
		}
	}

	return Info{}, false
}

// Parse validates a language code. An empty string is English.
func Parse(s string) (Language, error) {
	if s == "" {
		return English, nil
	}
	code := Language(strings.ToLower(s))
	if _, ok := Lookup(code); !ok {
		return "", fmt.Errorf("unsupported language %q", s)
	}

	return code, nil
}

// Detect returns the first language, in table order, with a keyword
// contained in text. Without a hit it returns English.
func Detect(text string) Language {
	lower := strings.ToLower(text)
	for _, l := range table {
		for _, kw := range l.keywords {
			if strings.Contains(lower, kw) {
				return l.Code
			}
		}
	}

	return English
}

// Phrases returns sample voice-search phrases, English for unknown codes.
func Phrases(code Language) []string {
	for _, l := range table {
		if l.Code == code {
			return append([]string(nil), l.phrases...)
		}
	}

	return append([]string(nil), table[0].phrases...)
}
