package document

import "errors"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	ErrEmptyPrompt = errors.New("prompt is empty")
	ErrBadImage    = errors.New("bad image_data")
)

type GenerationRequest struct {
	Prompt       string `json:"prompt"`
	DocumentType string `json:"document_type,omitempty"`
	Complexity   string `json:"complexity,omitempty"`
	// Length is accepted as an alias of Complexity.
	Length  string `json:"length,omitempty"`
	LLMName string `json:"llm_name,omitempty"`
}

func (r GenerationRequest) documentType() string {
	if r.DocumentType == "" {
		return "general"
	}
	return r.DocumentType
}

func (r GenerationRequest) complexity() string {
	switch {
	case r.Complexity != "":
		return r.Complexity
	case r.Length != "":
		return r.Length
	default:
		return "standard"
	}
}

type DrawingRequest struct {
	ImageData   string `json:"image_data"`
	Description string `json:"description"`
	DrawingMode string `json:"drawing_mode"`
	LLMName     string `json:"llm_name,omitempty"`
}

// Result is the response of the generation endpoints. LatexCode is always the
// plain source text, never URL-encoded.
type Result struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	PDFURL    string `json:"pdf_url,omitempty"`
	LatexCode string `json:"latex_code,omitempty"`
	Pages     int    `json:"pages,omitempty"`
	Details   string `json:"details,omitempty"`
	Log       string `json:"log,omitempty"`
}

func (r Result) OK() bool { return r.Status == StatusSuccess }
