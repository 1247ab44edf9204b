package models

import (
	"slices"
	"strings"
)

// Field names a tracked answer. The string value is the persisted JSON key.
type Field string

const (
	FieldClass                 Field = "class"
	FieldGender                Field = "gender"
	FieldLeisure               Field = "leisure"
	FieldDefinition            Field = "definition"
	FieldHealthAwareness       Field = "healthAwareness"
	FieldInfoSource            Field = "infoSource"
	FieldLifestyleImportance   Field = "lifestyleImportance"
	FieldReasons               Field = "reasons"
	FieldSeenUsers             Field = "seenUsers"
	FieldOnlineAds             Field = "onlineAds"
	FieldTrustPerson           Field = "trustPerson"
	FieldReactionToOffer       Field = "reactionToOffer"
	FieldSchoolPrevention      Field = "schoolPrevention"
	FieldPreventionSuggestions Field = "preventionSuggestions"
	FieldMadeMeThink           Field = "madeMeThink"
)

// TrackedFields lists every answer counted by the progress metric, in form order.
var TrackedFields = []Field{
	FieldClass,
	FieldGender,
	FieldLeisure,
	FieldDefinition,
	FieldHealthAwareness,
	FieldInfoSource,
	FieldLifestyleImportance,
	FieldReasons,
	FieldSeenUsers,
	FieldOnlineAds,
	FieldTrustPerson,
	FieldReactionToOffer,
	FieldSchoolPrevention,
	FieldPreventionSuggestions,
	FieldMadeMeThink,
}

// RequiredFields must be non-empty before a response can be submitted.
var RequiredFields = []Field{FieldClass, FieldGender}

// IsTracked reports whether f is one of the tracked answer fields.
func IsTracked(f Field) bool {
	return slices.Contains(TrackedFields, f)
}

// SurveyResponse is the answer set for one respondent.
type SurveyResponse struct {
	ClassLevel            string   `json:"class"`
	Gender                string   `json:"gender"`
	Leisure               string   `json:"leisure"`
	DefinitionText        string   `json:"definition"`
	HealthAwareness       string   `json:"healthAwareness"`
	InfoSource            string   `json:"infoSource"`
	LifestyleImportance   string   `json:"lifestyleImportance"`
	Reasons               []string `json:"reasons"`
	SeenUsers             string   `json:"seenUsers"`
	OnlineAds             string   `json:"onlineAds"`
	TrustPerson           string   `json:"trustPerson"`
	ReactionToOffer       string   `json:"reactionToOffer"`
	SchoolPrevention      string   `json:"schoolPrevention"`
	PreventionSuggestions string   `json:"preventionSuggestions"`
	MadeMeThink           string   `json:"madeMeThink"`
}

// NewSurveyResponse returns an all-default response.
func NewSurveyResponse() SurveyResponse {
	return SurveyResponse{Reasons: []string{}}
}

// scalar returns a pointer to the string backing a scalar field, or nil for
// reasons and unknown names.
func (r *SurveyResponse) scalar(f Field) *string {
	switch f {
	case FieldClass:
		return &r.ClassLevel
	case FieldGender:
		return &r.Gender
	case FieldLeisure:
		return &r.Leisure
	case FieldDefinition:
		return &r.DefinitionText
	case FieldHealthAwareness:
		return &r.HealthAwareness
	case FieldInfoSource:
		return &r.InfoSource
	case FieldLifestyleImportance:
		return &r.LifestyleImportance
	case FieldSeenUsers:
		return &r.SeenUsers
	case FieldOnlineAds:
		return &r.OnlineAds
	case FieldTrustPerson:
		return &r.TrustPerson
	case FieldReactionToOffer:
		return &r.ReactionToOffer
	case FieldSchoolPrevention:
		return &r.SchoolPrevention
	case FieldPreventionSuggestions:
		return &r.PreventionSuggestions
	case FieldMadeMeThink:
		return &r.MadeMeThink
	}
	return nil
}

// Set assigns a scalar field. It returns false when f is not a scalar field.
func (r *SurveyResponse) Set(f Field, value string) bool {
	p := r.scalar(f)
	if p == nil {
		return false
	}
	*p = value
	return true
}

// Get returns the value of a scalar field; reasons are joined with ", ".
func (r *SurveyResponse) Get(f Field) string {
	if f == FieldReasons {
		return strings.Join(r.Reasons, ", ")
	}
	if p := r.scalar(f); p != nil {
		return *p
	}
	return ""
}

// Filled reports whether f holds a non-empty value. Whitespace-only text
// counts as empty; reasons count once they have at least one tag.
func (r *SurveyResponse) Filled(f Field) bool {
	if f == FieldReasons {
		return len(r.Reasons) > 0
	}
	return strings.TrimSpace(r.Get(f)) != ""
}

// HasReason reports whether tag is selected.
func (r *SurveyResponse) HasReason(tag string) bool {
	return slices.Contains(r.Reasons, tag)
}

// Clone returns a deep copy detached from r.
func (r SurveyResponse) Clone() SurveyResponse {
	c := r
	c.Reasons = make([]string, len(r.Reasons))
	copy(c.Reasons, r.Reasons)
	return c
}

// StoredRecord is a submitted response with its generated identity.
type StoredRecord struct {
	SurveyResponse
	ID          string `json:"id"`
	SubmittedAt string `json:"submittedAt"`
}
