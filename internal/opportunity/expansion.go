package opportunity

import (
	"math"
	"strings"
)

// SourceExpansion tags candidates synthesized from a topic.
const SourceExpansion = "expansion"

const (
	expansionStartVolume = 870
	expansionVolumeStep  = 30
	expansionMinVolume   = 80
	expansionMaxComp     = 0.6
)

// modifier is either placed before the topic ("budget yoga mats") or after it
// ("yoga mats under $50").
type modifier struct {
	text   string
	prefix bool
}

// expansionModifiers are ordered price, use-case, spec, geo. The order
// determines the synthetic metrics each variation receives.
var expansionModifiers = []modifier{
	{text: "under $50"},
	{text: "under $100"},
	{text: "budget", prefix: true},
	{text: "affordable", prefix: true},

	{text: "for zoom calls"},
	{text: "for podcasting"},
	{text: "for interviews"},
	{text: "for beginners"},

	{text: "usb", prefix: true},
	{text: "xlr", prefix: true},
	{text: "wireless", prefix: true},
	{text: "noise cancelling", prefix: true},

	{text: "near me"},
}

// ExpandTopic deterministically synthesizes keyword variations for a topic.
// Metrics are placeholders shaped to look like realistic long-tail terms:
// volume decreases by 30 per item (floor 80), cpc and competition cycle.
func ExpandTopic(topic string) []Candidate {
	topic = strings.Join(strings.Fields(topic), " ")
	if topic == "" {
		return nil
	}

	out := make([]Candidate, 0, len(expansionModifiers))
	for i, m := range expansionModifiers {
		text := topic + " " + m.text
		if m.prefix {
			text = m.text + " " + topic
		}

		volume := expansionStartVolume - expansionVolumeStep*i
		if volume < expansionMinVolume {
			volume = expansionMinVolume
		}
		cpc := 0.6 + float64(i%5)*0.12
		competition := math.Min(expansionMaxComp, 0.22+float64(i%7)*0.04)

		c, err := NewCandidate(text, &volume, &competition, &cpc, SourceExpansion)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}
