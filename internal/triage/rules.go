package triage

import "github.com/apomuden/apomuden/internal/lang"

var defaultRules = []Rule{
	{
		Name:     "cardiac",
		Keywords: []string{"chest pain", "heart attack", "can't breathe", "difficulty breathing", "severe pain"},
		Response: map[lang.Code]string{
			lang.English: "⚠️ EMERGENCY: You may be experiencing a serious medical condition. Please call emergency services immediately or go to the nearest hospital.",
			lang.Akan:    "⚠️ NTƐM YI: Wobetumi anya ɔyare a ɛyɛ hu. Yɛsrɛ wo frɛ ɔyarefoɔ anaa kɔ ɔyarekurom a ɛbɛn ha ntɛm ara.",
		},
	},
	{
		Name:     "bleeding",
		Keywords: []string{"bleeding a lot", "severe bleeding", "can't stop bleeding", "blood everywhere"},
		Response: map[lang.Code]string{
			lang.English: "⚠️ EMERGENCY: Severe bleeding requires immediate medical attention. Apply pressure to the wound and call emergency services right away.",
			lang.Akan:    "⚠️ NTƐM YI: Mogya a ɛpue pii hia ayaresa ntɛm. Fa wo nsa to ayaresa no so na frɛ ɔyarefoɔ ntɛm ara.",
		},
	},
	{
		Name:     "breathing",
		Keywords: []string{"can't breathe", "choking", "suffocating", "no air"},
		Response: map[lang.Code]string{
			lang.English: "⚠️ EMERGENCY: Difficulty breathing can be life-threatening. Call emergency services immediately.",
			lang.Akan:    "⚠️ NTƐM YI: Sɛ wunntumi nhom yie a, ɛtumi ayɛ hu. Frɛ ɔyarefoɔ ntɛm ara.",
		},
	},
	{
		Name:     "anaphylaxis",
		Keywords: []string{"allergic reaction", "throat closing", "swelling face", "swelling lips", "anaphylaxis"},
		Response: map[lang.Code]string{
			lang.English: "⚠️ EMERGENCY: Severe allergic reaction can be life-threatening. Use an epinephrine auto-injector if available and call emergency services immediately.",
			lang.Akan:    "⚠️ NTƐM YI: Sɛ wunntumi nhom yie a, ɛtumi ayɛ hu. Fa wo nsa to ayaresa no so na frɛ ɔyarefoɔ ntɛm ara.",
		},
	},
	{
		Name:     "unconscious",
		Keywords: []string{"passed out", "unconscious", "blacked out", "fainted"},
		Response: map[lang.Code]string{
			lang.English: "⚠️ EMERGENCY: Loss of consciousness requires immediate medical attention. Call emergency services right away.",
			lang.Akan:    "⚠️ NTƐM YI: Sɛ wo ani nnye ho a, ɛhia sɛ wofrɛ ɔyarefoɔ ntɛm ara.",
		},
	},
}
