package protocol

import "github.com/medlogiq/protocol-engine/internal/terminology"

// RecommendationType tags the UI command variant a recommendation maps to.
type RecommendationType string

const (
	RecDiagnose             RecommendationType = "diagnose"
	RecPrescribe            RecommendationType = "prescribe"
	RecInstruction          RecommendationType = "instruction"
	RecInterview            RecommendationType = "interview"
	RecLab                  RecommendationType = "lab"
	RecImaging              RecommendationType = "imaging"
	RecPerform              RecommendationType = "perform"
	RecRefer                RecommendationType = "refer"
	RecFollowUp             RecommendationType = "follow_up"
	RecPlan                 RecommendationType = "plan"
	RecTask                 RecommendationType = "task"
	RecAllergy              RecommendationType = "allergy"
	RecImmunization         RecommendationType = "immunization"
	RecVitalSign            RecommendationType = "vital_sign"
	RecHyperlink            RecommendationType = "hyperlink"
	RecStructuredAssessment RecommendationType = "structured_assessment"
	RecBannerAlert          RecommendationType = "banner_alert"
)

// Recommendation is a structured suggestion the host renders as a one-click
// UI command. Key is stable within a result; Rank orders rendering. The
// variant payload is the value-set naming the pre-populated command, a URL,
// or a free-form context map, depending on Type.
type Recommendation struct {
	Type      RecommendationType `json:"type"`
	Key       string             `json:"key"`
	Rank      int                `json:"rank"`
	Button    string             `json:"button"`
	Title     string             `json:"title,omitempty"`
	Narrative string             `json:"narrative,omitempty"`

	ValueSet string         `json:"value_set,omitempty"`
	Href     string         `json:"href,omitempty"`
	Context  map[string]any `json:"context,omitempty"`
}

func newCoded(t RecommendationType, key string, rank int, button, title string, vs terminology.ValueSet) Recommendation {
	return Recommendation{Type: t, Key: key, Rank: rank, Button: button, Title: title, ValueSet: vs.Name}
}

func Diagnose(key string, rank int, title string, condition terminology.ValueSet) Recommendation {
	return newCoded(RecDiagnose, key, rank, "Diagnose", title, condition)
}

func Prescribe(key string, rank int, title string, medication terminology.ValueSet) Recommendation {
	return newCoded(RecPrescribe, key, rank, "Prescribe", title, medication)
}

func Instruct(key string, rank int, title string, instruction terminology.ValueSet) Recommendation {
	return newCoded(RecInstruction, key, rank, "Instruct", title, instruction)
}

func Interview(key string, rank int, title string, questionnaire terminology.ValueSet) Recommendation {
	return newCoded(RecInterview, key, rank, "Interview", title, questionnaire)
}

func Lab(key string, rank int, title string, order terminology.ValueSet) Recommendation {
	return newCoded(RecLab, key, rank, "Order", title, order)
}

func Imaging(key string, rank int, title string, order terminology.ValueSet) Recommendation {
	return newCoded(RecImaging, key, rank, "Order", title, order)
}

func Perform(key string, rank int, title string, procedure terminology.ValueSet) Recommendation {
	return newCoded(RecPerform, key, rank, "Perform", title, procedure)
}

func Refer(key string, rank int, title string, specialty terminology.ValueSet) Recommendation {
	return newCoded(RecRefer, key, rank, "Refer", title, specialty)
}

func FollowUp(key string, rank int, title string, context map[string]any) Recommendation {
	return Recommendation{Type: RecFollowUp, Key: key, Rank: rank, Button: "Follow up", Title: title, Context: context}
}

func Plan(key string, rank int, title string, context map[string]any) Recommendation {
	return Recommendation{Type: RecPlan, Key: key, Rank: rank, Button: "Plan", Title: title, Context: context}
}

func TaskRec(key string, rank int, title string, context map[string]any) Recommendation {
	return Recommendation{Type: RecTask, Key: key, Rank: rank, Button: "Task", Title: title, Context: context}
}

func Allergy(key string, rank int, title string, allergen terminology.ValueSet) Recommendation {
	return newCoded(RecAllergy, key, rank, "Record allergy", title, allergen)
}

func Immunize(key string, rank int, title string, vaccine terminology.ValueSet) Recommendation {
	return newCoded(RecImmunization, key, rank, "Immunize", title, vaccine)
}

func VitalSign(key string, rank int, title string, context map[string]any) Recommendation {
	return Recommendation{Type: RecVitalSign, Key: key, Rank: rank, Button: "Record vitals", Title: title, Context: context}
}

func Hyperlink(key string, rank int, title, href string) Recommendation {
	return Recommendation{Type: RecHyperlink, Key: key, Rank: rank, Button: "Open", Title: title, Href: href}
}

func StructuredAssessment(key string, rank int, title string, questionnaire terminology.ValueSet) Recommendation {
	return newCoded(RecStructuredAssessment, key, rank, "Assess", title, questionnaire)
}

// BannerAlert surfaces a passive alert. Placement names the chart surfaces
// that show it; Intent is one of the host's severity hints (info, warning,
// alert).
func BannerAlert(key string, rank int, narrative string, placement []string, intent string) Recommendation {
	return Recommendation{
		Type:      RecBannerAlert,
		Key:       key,
		Rank:      rank,
		Narrative: narrative,
		Context: map[string]any{
			"placement": placement,
			"intent":    intent,
		},
	}
}
