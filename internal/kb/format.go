package kb

import (
	"fmt"
	"github.com/apomuden/apomuden/internal/lang"
	"strings"
)

type layout struct {
	about, symptoms, treatments, causes, precautions, riskGroups, transmission, disclaimer string
}

var layouts = map[lang.Code]layout{
	lang.English: {
		about:        "About %s:",
		symptoms:     "Common symptoms include: %s",
		treatments:   "Treatment options include: %s",
		causes:       "Possible causes include: %s",
		precautions:  "Precautions to take: %s",
		riskGroups:   "People at higher risk: %s",
		transmission: "Transmission: %s",
		disclaimer:   "Note: This information is for educational purposes only and should not replace professional medical advice. Please consult a healthcare provider for medical advice.",
	},
	lang.Akan: {
		about:        "Nea ɛfa %s ho:",
		symptoms:     "Yareɛ no nsɛnkyerɛnne ahorow ne: %s",
		treatments:   "Yareɛ no ayaresa ne: %s",
		causes:       "Ebetumi aba efise: %s",
		precautions:  "Nneɛma a woyɛ: %s",
		riskGroups:   "Nnipa a wɔwɔ yareɛ yi so yɛ: %s",
		transmission: "Ɛnam saa kwan so na ɛnam so kɔ: %s",
		disclaimer:   "Nkyerɛkyerɛ: Wɔde nsɛm yi ama w'ani nkɔ so nanso ɛnyɛ oduruyɛfoɔ adwuma. Yɛsrɛ wo kɔbisa oduruyɛfoɔ foforo.",
	},
}

// Format renders structured details as a readable answer followed by a
// disclaimer. Empty fields are left out. fallbackName is used when the
// details carry no name of their own.
func Format(d Details, fallbackName string, code lang.Code) string {
	l, ok := layouts[code]
	if !ok {
		l = layouts[lang.English]
	}
	name := d.Name
	if name == "" {
		name = fallbackName
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf(l.about, name))
	if d.Description != "" {
		b.WriteString(" ")
		b.WriteString(d.Description)
	}
	list := func(format string, items []string) {
		if len(items) == 0 {
			return
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(format, strings.Join(items, ", ")))
	}
	list(l.symptoms, d.Symptoms)
	list(l.treatments, d.Treatments)
	list(l.causes, d.Causes)
	list(l.precautions, d.Precautions)
	list(l.riskGroups, d.RiskGroups)
	if d.Transmission != "" {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(l.transmission, d.Transmission))
	}
	b.WriteString("\n\n")
	b.WriteString(l.disclaimer)
	return b.String()
}
