// Package dateparse extracts dates, times and task priorities from
// informal Russian text.
package dateparse

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"obsidian-vault-bot/internal/domain"
)

// ParsedDate is a single date or date+time mention found in text.
type ParsedDate struct {
	Original   string // the matched fragment, e.g. "завтра" or "через 2 дня"
	Date       string // YYYY-MM-DD
	Time       string // HH:MM, empty when only a date was found
	Relative   bool
	Confidence float64
}

// timeWindow is how far around a date word a time mention still counts
// as belonging to it, in runes.
const timeWindow = 50

var relativeDays = []struct {
	word string
	days int
}{
	{"послезавтра", 2},
	{"позавчера", -2},
	{"сегодня", 0},
	{"завтра", 1},
	{"вчера", -1},
}

// Weekday forms include accusatives ("в пятницу") next to nominatives.
var weekdays = []struct {
	word string
	day  int // Monday == 0
}{
	{"понедельник", 0},
	{"вторник", 1},
	{"среда", 2},
	{"среду", 2},
	{"четверг", 3},
	{"пятница", 4},
	{"пятницу", 4},
	{"суббота", 5},
	{"субботу", 5},
	{"воскресенье", 6},
}

var dayPeriods = []struct {
	word string
	time string
}{
	{"утром", "09:00"},
	{"днем", "14:00"},
	{"вечером", "19:00"},
	{"ночью", "23:00"},
}

var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`в\s+(\d{1,2}):(\d{2})`),
	regexp.MustCompile(`в\s+(\d{1,2})\s+час`),
	regexp.MustCompile(`(\d{1,2}):(\d{2})`),
}

var (
	throughRe   = regexp.MustCompile(`через\s+(\d+)\s+(день|дня|дней|неделю|недели|недель)`)
	fullDateRe  = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`)
	shortDateRe = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\b`)
)

// Parser resolves relative date words against a fixed reference moment.
type Parser struct {
	ref time.Time
}

func New(reference time.Time) *Parser {
	if reference.IsZero() {
		reference = time.Now()
	}
	return &Parser{ref: reference}
}

// Parse finds every date and time mention in text. Results are
// deduplicated by date and sorted chronologically.
func (p *Parser) Parse(text string) []ParsedDate {
	text = strings.ToLower(text)
	var found []ParsedDate

	for _, rel := range relativeDays {
		if indexWord(text, rel.word) < 0 {
			continue
		}
		found = append(found, ParsedDate{
			Original:   rel.word,
			Date:       p.offsetDate(rel.days),
			Time:       timeNearWord(text, rel.word),
			Relative:   true,
			Confidence: 0.95,
		})
	}

	if word, day, ok := findWeekday(text); ok {
		found = append(found, ParsedDate{
			Original:   word,
			Date:       p.nextWeekday(day),
			Time:       timeNearWord(text, word),
			Relative:   true,
			Confidence: 0.85,
		})
	}

	for _, m := range throughRe.FindAllStringSubmatchIndex(text, -1) {
		count, _ := strconv.Atoi(text[m[2]:m[3]])
		days := count
		if strings.HasPrefix(text[m[4]:m[5]], "недел") {
			days = count * 7
		}
		found = append(found, ParsedDate{
			Original:   text[m[0]:m[1]],
			Date:       p.offsetDate(days),
			Time:       timeNearPosition(text, runeIndex(text, m[0])),
			Relative:   true,
			Confidence: 0.90,
		})
	}

	if indexWord(text, "на следующей неделе") >= 0 || indexWord(text, "на будущей неделе") >= 0 {
		found = append(found, ParsedDate{
			Original:   "на следующей неделе",
			Date:       p.offsetDate(7),
			Time:       extractTime(text),
			Relative:   true,
			Confidence: 0.80,
		})
	}

	found = append(found, p.absoluteDates(text)...)

	// Day periods ("утром") only pin a time when nothing else did.
	for _, period := range dayPeriods {
		if indexWord(text, period.word) < 0 {
			continue
		}
		if len(found) == 0 || anyHasTime(found) {
			continue
		}
		if found[0].Time == "" {
			found[0].Time = period.time
		}
	}

	return deduplicate(found)
}

func (p *Parser) absoluteDates(text string) []ParsedDate {
	var dates []ParsedDate

	for _, m := range fullDateRe.FindAllStringSubmatchIndex(text, -1) {
		day, _ := strconv.Atoi(text[m[2]:m[3]])
		month, _ := strconv.Atoi(text[m[4]:m[5]])
		year, _ := strconv.Atoi(text[m[6]:m[7]])
		date, ok := makeDate(year, month, day)
		if !ok {
			continue
		}
		dates = append(dates, ParsedDate{
			Original:   text[m[0]:m[1]],
			Date:       date.Format("2006-01-02"),
			Time:       timeNearPosition(text, runeIndex(text, m[0])),
			Confidence: 1.0,
		})
	}

	for _, m := range shortDateRe.FindAllStringSubmatchIndex(text, -1) {
		day, _ := strconv.Atoi(text[m[2]:m[3]])
		month, _ := strconv.Atoi(text[m[4]:m[5]])
		date, ok := makeDate(p.ref.Year(), month, day)
		if !ok {
			continue
		}
		dates = append(dates, ParsedDate{
			Original:   text[m[0]:m[1]],
			Date:       date.Format("2006-01-02"),
			Time:       timeNearPosition(text, runeIndex(text, m[0])),
			Confidence: 0.90,
		})
	}

	return dates
}

func (p *Parser) offsetDate(days int) string {
	return p.ref.AddDate(0, 0, days).Format("2006-01-02")
}

func (p *Parser) nextWeekday(target int) string {
	current := (int(p.ref.Weekday()) + 6) % 7 // Monday == 0
	ahead := target - current
	if ahead <= 0 {
		ahead += 7
	}
	return p.ref.AddDate(0, 0, ahead).Format("2006-01-02")
}

// findWeekday reports the first weekday mention. A bare weekday only
// counts when the word itself starts with "в" (вторник, воскресенье);
// otherwise the "в <день>" form is required, which keeps genitives like
// "понедельника" from matching.
func findWeekday(text string) (string, int, bool) {
	for _, wd := range weekdays {
		if indexWord(text, "в "+wd.word) >= 0 || indexWord(text, "во "+wd.word) >= 0 {
			return wd.word, wd.day, true
		}
		if strings.HasPrefix(wd.word, "в") && indexWord(text, wd.word) >= 0 {
			return wd.word, wd.day, true
		}
	}
	return "", 0, false
}

func extractTime(text string) string {
	for _, re := range timePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		hour, _ := strconv.Atoi(m[1])
		if len(m) == 3 && m[2] != "" {
			minute, _ := strconv.Atoi(m[2])
			return fmt.Sprintf("%02d:%02d", hour, minute)
		}
		return fmt.Sprintf("%02d:00", hour)
	}
	return ""
}

func timeNearWord(text, word string) string {
	idx := indexWord(text, word)
	if idx < 0 {
		idx = strings.Index(text, word)
	}
	if idx < 0 {
		return extractTime(text)
	}
	return timeNear(text, runeIndex(text, idx), utf8.RuneCountInString(word))
}

func timeNearPosition(text string, runePos int) string {
	return timeNear(text, runePos, 0)
}

func timeNear(text string, runeStart, runeLen int) string {
	runes := []rune(text)
	start := max(runeStart-timeWindow, 0)
	end := min(runeStart+runeLen+timeWindow, len(runes))
	if t := extractTime(string(runes[start:end])); t != "" {
		return t
	}
	return extractTime(text)
}

func anyHasTime(dates []ParsedDate) bool {
	for _, pd := range dates {
		if pd.Time != "" {
			return true
		}
	}
	return false
}

func makeDate(year, month, day int) (time.Time, bool) {
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// deduplicate keeps one mention per date, preferring entries that carry
// a time and then higher confidence.
func deduplicate(dates []ParsedDate) []ParsedDate {
	if len(dates) == 0 {
		return nil
	}
	order := make([]string, 0, len(dates))
	groups := make(map[string][]ParsedDate, len(dates))
	for _, pd := range dates {
		if _, ok := groups[pd.Date]; !ok {
			order = append(order, pd.Date)
		}
		groups[pd.Date] = append(groups[pd.Date], pd)
	}

	result := make([]ParsedDate, 0, len(order))
	for _, date := range order {
		group := groups[date]
		best := group[0]
		for _, pd := range group[1:] {
			if moreSpecific(pd, best) {
				best = pd
			}
		}
		result = append(result, best)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result
}

func moreSpecific(a, b ParsedDate) bool {
	aTime, bTime := a.Time != "", b.Time != ""
	if aTime != bTime {
		return aTime
	}
	return a.Confidence > b.Confidence
}

// indexWord returns the byte offset of the first stand-alone occurrence
// of word in text, or -1. Stand-alone means not glued to letters or
// digits, so "завтра" is not found inside "послезавтра".
func indexWord(text, word string) int {
	for from := 0; from+len(word) <= len(text); {
		i := strings.Index(text[from:], word)
		if i < 0 {
			return -1
		}
		i += from
		if boundedAt(text, i, len(word)) {
			return i
		}
		from = i + 1
	}
	return -1
}

func boundedAt(text string, idx, length int) bool {
	if idx > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:idx])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if idx+length < len(text) {
		r, _ := utf8.DecodeRuneInString(text[idx+length:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func runeIndex(text string, byteIdx int) int {
	return utf8.RuneCountInString(text[:byteIdx])
}

var lowPriorityMarkers = []string{
	"когда-нибудь", "не спешно", "не срочно",
	"можно позже", "при случае", "если будет время",
}

var highPriorityMarkers = []string{
	"срочно", "asap", "важно", "критично",
	"немедленно", "обязательно", "приоритет",
	"горит", "пожар",
}

// ExtractPriority guesses a task's priority from marker words. Low
// markers are checked first so that "не срочно" is not read as urgent.
func ExtractPriority(text string) string {
	text = strings.ToLower(text)
	for _, kw := range lowPriorityMarkers {
		if strings.Contains(text, kw) {
			return domain.PriorityLow
		}
	}
	for _, kw := range highPriorityMarkers {
		if strings.Contains(text, kw) {
			return domain.PriorityHigh
		}
	}
	return ""
}

// NormalizeObsidianDate rewrites an ISO date as "today" or "tomorrow"
// relative to ref. Anything else, including unparsable input, is
// returned unchanged.
func NormalizeObsidianDate(dateStr string, ref time.Time) string {
	target, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return dateStr
	}
	refDay := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	switch int(target.Sub(refDay).Hours() / 24) {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	}
	return dateStr
}
