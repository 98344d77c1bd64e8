package debate

import (
	"regexp"
	"strings"
)

// The first message of a debate must carry a Topic and a Side, e.g.
// "Topic: remote work improves productivity, Side: con". Continuation
// messages must not repeat either marker.

var (
	topicRe   = regexp.MustCompile(`(?i)\btopic\s*:\s*(.+?)(?:,?\s*\bside\b|$)`)
	sideRe    = regexp.MustCompile(`(?i)\bside\s*:\s*(\w+)`)
	markersRe = regexp.MustCompile(`(?i)\b(topic|side)\s*:`)
)

const (
	SidePro = "pro"
	SideCon = "con"
)

// ParseTopicSide extracts the topic and side from a start message.
func ParseTopicSide(text string) (topic, side string, err error) {
	if strings.TrimSpace(text) == "" {
		return "", "", &DomainError{Kind: KindInvalidMessage, Msg: "message must not be empty"}
	}

	mTopic := topicRe.FindStringSubmatch(text)
	mSide := sideRe.FindStringSubmatch(text)
	if mTopic == nil && mSide == nil {
		return "", "", &DomainError{Kind: KindInvalidMessage, Msg: "message must contain Topic: and Side: fields"}
	}
	if mTopic == nil {
		return "", "", &DomainError{Kind: KindInvalidMessage, Msg: "topic is missing"}
	}
	if mSide == nil {
		return "", "", &DomainError{Kind: KindInvalidMessage, Msg: "side is missing"}
	}

	topic = strings.Trim(mTopic[1], " .,\n\t")
	side = strings.ToLower(strings.TrimSpace(mSide[1]))
	if side != SidePro && side != SideCon {
		return "", "", &DomainError{Kind: KindInvalidMessage, Msg: "side must be 'pro' or 'con'"}
	}
	if topic == "" {
		return "", "", &DomainError{Kind: KindInvalidMessage, Msg: "topic must not be empty"}
	}
	return topic, side, nil
}

// AssertNoMarkers rejects continuation messages that try to restate the
// topic or side mid-debate.
func AssertNoMarkers(text string) error {
	if strings.TrimSpace(text) == "" {
		return &DomainError{Kind: KindInvalidMessage, Msg: "message must not be empty"}
	}
	if markersRe.MatchString(text) {
		return &DomainError{Kind: KindInvalidMessage, Msg: "topic/side must not be provided when continuing a conversation"}
	}
	return nil
}

const negationPrefix = "it is not the case that "

// BuildThesis derives the proposition the bot defends. The user always
// argues the opposite side of it.
func BuildThesis(topic, side string) string {
	if side == SideCon {
		return negationPrefix + topic
	}
	return topic
}

// NegateThesis flips a thesis built by BuildThesis.
func NegateThesis(thesis string) string {
	if strings.HasPrefix(strings.ToLower(thesis), negationPrefix) {
		return thesis[len(negationPrefix):]
	}
	return negationPrefix + thesis
}
