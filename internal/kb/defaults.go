package kb

import "github.com/apomuden/apomuden/internal/lang"

// Default returns the built in knowledge base.
func Default() *Base {
	return New(defaultEntries...)
}

var defaultEntries = []Entry{
	{
		Key: "headache",
		Text: map[lang.Code]string{
			lang.English: "Headaches can be caused by stress, dehydration, lack of sleep, eye strain, or underlying conditions. Rest in a quiet, dark room, stay hydrated, and apply cold/warm compress. Seek medical attention if severe or persistent.",
			lang.Akan:    "Ti yare betumi afi stress, nsuo a wonnom, nna a wonnya, aniwa mu haw, anaa ɔyare foforɔ mu ba. Home wɔ komm ne sum beae, nom nsuo pii, na fa nsuonwini anaa hyew nneɛma to wo ti so.",
		},
	},
	{
		Key: "fever",
		Text: map[lang.Code]string{
			lang.English: "Fever is the body's response to infection. Normal temperature is 98.6°F (37°C). Rest, drink fluids, and use fever reducers if appropriate. Seek medical care if fever exceeds 103°F (39.4°C) or persists.",
			lang.Akan:    "Ɔhyew yɛ nipadua no ɔkwan a ɔfa so ko tia nyarewa. Nipadua mu hyew a ɛyɛ dɛ yɛ 98.6°F (37°C). Home, nom nsuo pii, na sɛ ɛho hia a, nom nnuro a ɛtumi te ɔhyew so.",
		},
	},
	{
		Key: "malaria",
		Text: map[lang.Code]string{
			lang.English: "Malaria is caused by parasites spread through mosquito bites. Symptoms include high fever, chills, headache, and fatigue. Seek immediate medical attention if you suspect malaria.",
			lang.Akan:    "Atiridii yɛ ɔyare a ɛfi asan a ɛkɔ so wɔ ɔsram no nipadua mu. Nnuru a wɔde sa atiridii no bi ne chloroquine, artemisinin-based combination therapies (ACTs), ne foforɔ. Sɛ wo susu sɛ wobɛtumi anya atiridii a, kɔ oduruyɛbea ntɛm ara.",
		},
	},
	{
		Key: "hypertension",
		Text: map[lang.Code]string{
			lang.English: "High blood pressure often has no symptoms but can lead to serious health issues. Maintain a healthy diet, exercise regularly, limit alcohol, and avoid smoking.",
			lang.Akan:    "Mogya a ɛyɛ den kɛse pii no ɛnni nneɛma a ɛda adi, nanso ɛtumi de ɔhaw akɛse aba wo yare mu. Di aduane pa, yɛ mmirika, fa nsa gu, na yɛ mogya mu nsunsuansoɔ nhwehwɛmu daa.",
		},
	},
	{
		Key: "typhoid",
		Details: map[lang.Code]Details{
			lang.English: {
				Name:         "Typhoid fever",
				Description:  "A bacterial infection caused by Salmonella Typhi.",
				Symptoms:     []string{"prolonged high fever", "weakness", "stomach pain", "headache", "loss of appetite"},
				Causes:       []string{"contaminated food", "contaminated water"},
				Treatments:   []string{"antibiotics prescribed by a doctor", "plenty of fluids", "rest"},
				Precautions:  []string{"drink safe water", "wash hands with soap", "eat well cooked food", "vaccination"},
				RiskGroups:   []string{"children", "travellers to endemic areas", "people without access to safe water"},
				Transmission: "Through food or water contaminated with the faeces of an infected person.",
			},
		},
	},
	{
		Key: "cholera",
		Details: map[lang.Code]Details{
			lang.English: {
				Name:         "Cholera",
				Description:  "An acute diarrhoeal infection caused by Vibrio cholerae.",
				Symptoms:     []string{"profuse watery diarrhoea", "vomiting", "leg cramps", "dehydration"},
				Causes:       []string{"contaminated water", "contaminated food"},
				Treatments:   []string{"oral rehydration solution", "intravenous fluids for severe cases", "antibiotics when advised"},
				Precautions:  []string{"drink boiled or treated water", "wash hands with soap", "use safe sanitation"},
				RiskGroups:   []string{"young children", "people in areas with poor sanitation"},
				Transmission: "Through water or food contaminated with the cholera bacterium.",
			},
		},
	},
	{
		Key: "diabetes",
		Details: map[lang.Code]Details{
			lang.English: {
				Name:        "Diabetes",
				Description: "A chronic condition where the body cannot properly regulate blood sugar.",
				Symptoms:    []string{"frequent urination", "excessive thirst", "unexplained weight loss", "blurred vision", "slow healing sores"},
				Causes:      []string{"insufficient insulin production", "insulin resistance"},
				Treatments:  []string{"healthy diet", "regular exercise", "medication or insulin as prescribed"},
				Precautions: []string{"maintain a healthy weight", "limit sugary foods", "regular blood sugar checks"},
				RiskGroups:  []string{"people over 45", "people with a family history", "overweight people"},
			},
		},
	},
	{
		Key: "tuberculosis",
		Details: map[lang.Code]Details{
			lang.English: {
				Name:         "Tuberculosis",
				Description:  "A bacterial infection that mainly affects the lungs.",
				Symptoms:     []string{"cough lasting more than two weeks", "coughing up blood", "night sweats", "weight loss", "fever"},
				Causes:       []string{"Mycobacterium tuberculosis"},
				Treatments:   []string{"a full course of TB medicines from a health facility"},
				Precautions:  []string{"cover your mouth when coughing", "keep rooms ventilated", "complete the full treatment"},
				RiskGroups:   []string{"people living with HIV", "close contacts of TB patients", "malnourished people"},
				Transmission: "Through the air when a person with active TB coughs or sneezes.",
			},
		},
	},
}
