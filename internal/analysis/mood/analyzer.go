package mood

import (
	"strings"
)

// Label 表示客户消息的情绪类别。
type Label string

const (
	Neutral    Label = "neutral"
	Frustrated Label = "frustrated"
	Urgent     Label = "urgent"
	Confused   Label = "confused"
	Satisfied  Label = "satisfied"
)

// Decision 给出识别结果以及强度（1-5）。
type Decision struct {
	Mood      Label
	Intensity int
	Score     int
}

var keywordBuckets = map[Label][]string{
	Frustrated: {
		"angry", "annoyed", "terrible", "worst", "useless", "ridiculous", "fed up", "still not", "again",
		"complaint", "unacceptable", "disappointed", "broken", "गुस्सा", "परेशान", "बेकार", "खराब", "शिकायत",
		"नाराज़", "फिर से", "अभी तक नहीं",
	},
	Urgent: {
		"urgent", "asap", "immediately", "right now", "emergency", "today", "quickly", "hurry",
		"जल्दी", "तुरंत", "अभी", "आज ही", "ज़रूरी", "फ़ौरन",
	},
	Confused: {
		"how do i", "how to", "don't understand", "do not understand", "confused", "what does", "unclear",
		"not sure", "कैसे", "समझ नहीं", "क्या मतलब", "पता नहीं",
	},
	Satisfied: {
		"thanks", "thank you", "great", "perfect", "awesome", "resolved", "works now", "helpful",
		"धन्यवाद", "शुक्रिया", "बढ़िया", "बहुत अच्छा", "हो गया",
	},
}

var punctuationBoost = map[Label]int{
	Frustrated: 2,
	Urgent:     1,
	Confused:   2,
}

// Analyze 根据客户的话推断情绪，供回复措辞与语音参数使用。
func Analyze(utterance string) Decision {
	scores := scoreText(utterance)

	best, bestScore := Neutral, 0
	// 同分时按优先级取：先处理不满，再处理紧急。
	for _, label := range []Label{Frustrated, Urgent, Confused, Satisfied} {
		if scores[label] > bestScore {
			best, bestScore = label, scores[label]
		}
	}

	if bestScore == 0 {
		return Decision{Mood: Neutral, Intensity: 1}
	}

	intensity := 1 + bestScore/3
	if intensity > 5 {
		intensity = 5
	}
	return Decision{Mood: best, Intensity: intensity, Score: bestScore}
}

func scoreText(text string) map[Label]int {
	scores := make(map[Label]int)

	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return scores
	}

	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[label] += 3
			}
		}
	}

	// 标点只放大已有的倾向
	exclamations := strings.Count(text, "!")
	questions := strings.Count(text, "?")
	if scores[Frustrated] > 0 {
		scores[Frustrated] += exclamations * punctuationBoost[Frustrated]
	}
	if scores[Urgent] > 0 {
		scores[Urgent] += exclamations * punctuationBoost[Urgent]
	}
	if scores[Confused] > 0 {
		scores[Confused] += questions * punctuationBoost[Confused]
	}

	if isShouting(text) {
		scores[Frustrated] += 3
	}
	return scores
}

// isShouting reports whether most latin letters in text are upper case.
func isShouting(text string) bool {
	upper, letters := 0, 0
	for _, r := range text {
		switch {
		case r >= 'A' && r <= 'Z':
			upper++
			letters++
		case r >= 'a' && r <= 'z':
			letters++
		}
	}
	return letters >= 8 && upper*4 >= letters*3
}
