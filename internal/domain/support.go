package domain

// ContactMessage is what the contact page sends.
type ContactMessage struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

// ColorAnalysisRequest describes the shopper for a palette suggestion.
type ColorAnalysisRequest struct {
	SkinTone  string `json:"skinTone" validate:"required"`
	HairColor string `json:"hairColor" validate:"required"`
	EyeColor  string `json:"eyeColor" validate:"required"`
}

type Swatch struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// ColorProfile is a stored color analysis and the palette it suggested.
type ColorProfile struct {
	SkinTone        string   `json:"skinTone"`
	HairColor       string   `json:"hairColor"`
	EyeColor        string   `json:"eyeColor"`
	SuggestedColors []Swatch `json:"suggestedColors"`
}
