package makemkv

import (
	"strconv"
	"strings"
)

// EventKind classifies a decoded protocol line.
type EventKind int

const (
	// EventPassthrough carries a raw line the decoder did not recognize.
	EventPassthrough EventKind = iota
	// EventProgress carries a normalized percentage in [0, 100].
	EventProgress
	// EventCaption carries the current operation caption verbatim.
	EventCaption
	// EventMessage carries a user-facing message with parameters resolved.
	EventMessage
	// EventSilent marks structural records (track, drive, title metadata)
	// that carry no progress information and must not reach the display.
	EventSilent
)

// Event is the decoded form of one protocol line. Exactly one of the payload
// fields is meaningful, selected by Kind; Raw always holds the original line.
type Event struct {
	Kind    EventKind
	Percent float64
	Text    string
	Raw     string
}

// Line tags recognized by the decoder. Everything else is passthrough.
const (
	tagProgressValue = "PRGV:"
	tagCaptionOp     = "PRGC:"
	tagCaptionTotal  = "PRGT:"
	tagMessage       = "MSG:"
)

// silentTags are structural records suppressed from the display. They are
// consumed by the disc scanner, not by the rip progress path.
var silentTags = []string{"TCOUNT:", "DRV:", "CINFO:", "TINFO:", "SINFO:"}

// Decode turns one protocol line into an Event. It never fails; unparsable
// input degrades to EventPassthrough.
func Decode(line string) Event {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, tagProgressValue):
		if percent, ok := decodeProgressValue(strings.TrimPrefix(trimmed, tagProgressValue)); ok {
			return Event{Kind: EventProgress, Percent: percent, Raw: line}
		}
		return Event{Kind: EventPassthrough, Text: line, Raw: line}
	case strings.HasPrefix(trimmed, tagCaptionOp), strings.HasPrefix(trimmed, tagCaptionTotal):
		payload := trimmed[len(tagCaptionOp):]
		if caption, ok := decodeCaption(payload); ok {
			return Event{Kind: EventCaption, Text: caption, Raw: line}
		}
		return Event{Kind: EventPassthrough, Text: line, Raw: line}
	case strings.HasPrefix(trimmed, tagMessage):
		if message, ok := decodeMessage(strings.TrimPrefix(trimmed, tagMessage)); ok {
			return Event{Kind: EventMessage, Text: message, Raw: line}
		}
		return Event{Kind: EventPassthrough, Text: line, Raw: line}
	default:
		for _, tag := range silentTags {
			if strings.HasPrefix(trimmed, tag) {
				return Event{Kind: EventSilent, Raw: line}
			}
		}
		return Event{Kind: EventPassthrough, Text: line, Raw: line}
	}
}

// decodeProgressValue normalizes the ambiguous progress integer. The protocol
// gives no scale indicator; observed payloads range over 0-100, 0-10000, and
// 0-100000, so the bands below are an empirical heuristic (values above 10000
// belong to the 0-100000 scale). Keep any corrections here rather than in the
// estimator.
func decodeProgressValue(payload string) (float64, bool) {
	fields := strings.Split(payload, ",")
	raw, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return 0, false
	}
	switch {
	case raw > 10000:
		raw /= 1000
	case raw > 100:
		raw /= 100
	}
	if raw < 0 {
		raw = 0
	}
	if raw > 100 {
		raw = 100
	}
	return raw, true
}

// decodeCaption extracts the quoted caption from a PRGC/PRGT payload of the
// form code,id,"Name".
func decodeCaption(payload string) (string, bool) {
	fields, ok := splitQuoted(payload)
	if !ok {
		return "", false
	}
	for _, field := range fields {
		if strings.HasPrefix(field, "\"") {
			return trimQuotes(field), true
		}
	}
	// Some builds emit the caption unquoted as the last field.
	if len(fields) >= 3 {
		caption := strings.TrimSpace(fields[len(fields)-1])
		if caption != "" {
			return caption, true
		}
	}
	return "", false
}

// decodeMessage resolves a MSG payload of the form
// code,flags,count,"template",param1,param2,... by substituting %1, %2, ...
// with the positional parameters.
func decodeMessage(payload string) (string, bool) {
	fields, ok := splitQuoted(payload)
	if !ok || len(fields) < 4 {
		return "", false
	}
	template := trimQuotes(fields[3])
	if template == "" {
		return "", false
	}
	params := fields[4:]
	for i := len(params); i >= 1; i-- {
		placeholder := "%" + strconv.Itoa(i)
		template = strings.ReplaceAll(template, placeholder, trimQuotes(params[i-1]))
	}
	return template, true
}

// splitQuoted splits a comma-separated record while respecting double-quoted
// fields. Quotes are preserved on the returned fields so callers can tell
// quoted strings from bare values. Returns ok=false when the quoting is
// unbalanced, in which case the record cannot be trusted.
func splitQuoted(payload string) ([]string, bool) {
	var fields []string
	inQuote := false
	start := 0
	for i := 0; i < len(payload); i++ {
		switch payload[i] {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				fields = append(fields, strings.TrimSpace(payload[start:i]))
				start = i + 1
			}
		}
	}
	fields = append(fields, strings.TrimSpace(payload[start:]))
	return fields, !inQuote
}

func trimQuotes(field string) string {
	return strings.Trim(strings.TrimSpace(field), "\"")
}
