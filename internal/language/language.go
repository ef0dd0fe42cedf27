package language

import "strings"

type entry struct {
	code2   string   // ISO 639-1
	code3   string   // ISO 639-2 primary
	alt3    string   // ISO 639-2 bibliographic variant ("fre" vs "fra")
	display string   // English name
	words   []string // accepted word forms
}

var languages = []entry{
	{"en", "eng", "", "English", []string{"english"}},
	{"es", "spa", "", "Spanish", []string{"spanish", "castilian"}},
	{"fr", "fra", "fre", "French", []string{"french"}},
	{"de", "deu", "ger", "German", []string{"german"}},
	{"it", "ita", "", "Italian", []string{"italian"}},
	{"pt", "por", "", "Portuguese", []string{"portuguese"}},
	{"ja", "jpn", "", "Japanese", []string{"japanese"}},
	{"ko", "kor", "", "Korean", []string{"korean"}},
	{"zh", "zho", "chi", "Chinese", []string{"chinese", "mandarin"}},
	{"ru", "rus", "", "Russian", []string{"russian"}},
	{"ar", "ara", "", "Arabic", []string{"arabic"}},
	{"hi", "hin", "", "Hindi", []string{"hindi"}},
	{"nl", "nld", "dut", "Dutch", []string{"dutch", "flemish"}},
	{"pl", "pol", "", "Polish", []string{"polish"}},
	{"sv", "swe", "", "Swedish", []string{"swedish"}},
	{"da", "dan", "", "Danish", []string{"danish"}},
	{"no", "nor", "", "Norwegian", []string{"norwegian"}},
	{"fi", "fin", "", "Finnish", []string{"finnish"}},
	{"uk", "ukr", "", "Ukrainian", []string{"ukrainian"}},
	{"tr", "tur", "", "Turkish", []string{"turkish"}},
	{"cs", "ces", "cze", "Czech", []string{"czech"}},
	{"el", "ell", "gre", "Greek", []string{"greek"}},
	{"he", "heb", "", "Hebrew", []string{"hebrew"}},
	{"id", "ind", "", "Indonesian", []string{"indonesian"}},
	{"vi", "vie", "", "Vietnamese", []string{"vietnamese"}},
	{"th", "tha", "", "Thai", []string{"thai"}},
	{"ca", "cat", "", "Catalan", []string{"catalan", "valencian"}},
	{"hu", "hun", "", "Hungarian", []string{"hungarian"}},
	{"ro", "ron", "rum", "Romanian", []string{"romanian", "moldavian"}},
}

var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// ToISO2 converts a recognized code or word to ISO 639-1. Unrecognized
// 2-letter codes pass through lowercased; anything else yields "".
func ToISO2(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if e := lookup(code); e != nil {
		return e.code2
	}
	if len(code) == 2 {
		return code
	}
	return ""
}

// Normalize maps a configured language to the form sent to transcription
// backends. Empty means auto-detect. ok is false when value names no
// language.
func Normalize(value string) (code string, ok bool) {
	if strings.TrimSpace(value) == "" {
		return "", true
	}
	code = ToISO2(value)
	return code, code != ""
}

// DisplayName returns a human-readable name for a code. Empty input means
// auto-detection.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "auto-detect"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}
