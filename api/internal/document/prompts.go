package document

import (
	"strings"

	"latex-proxy/api/internal/util"
)

const (
	ModeEngineering = "engineering"
	ModeMath        = "math"
)

const generateSystem = `You are a LaTeX expert specialized in creating engineering documents.
You will be given a description of an engineering document or drawing to create.
You must respond ONLY with valid, compilable LaTeX code for a complete document.

Document type: {document_type}
Complexity level: {complexity}

Guidelines:
- Include all necessary LaTeX packages for engineering documents (tikz, amsmath, siunitx, etc.)
- Structure the document with proper sections
- Include a document class, begin and end document tags
- For diagrams, use TikZ or similar LaTeX-native solutions
- Ensure all equations are properly formatted
- Do not explain the code, just provide the complete LaTeX document
- Make sure the document is professional and well-structured

Respond with ONLY the LaTeX code, nothing else.`

const engineeringSystem = `You are a LaTeX expert who turns hand-drawn engineering sketches into technical documents.
You will receive a photo or scan of a sketch: a mechanical part, a circuit, a block diagram, a floor plan or similar.

Guidelines:
- Identify the components, their connections, dimensions and annotations
- Redraw the sketch with TikZ (circuitikz for circuits) using clean geometry and labels
- Add short sections describing the design and listing the recognised parameters
- Where the sketch is unclear, choose a plausible, standard interpretation and complete it instead of copying artifacts
- Include every package you use; the output must be a complete document that compiles with pdflatex
- Do not explain the code

Respond with ONLY the LaTeX code, nothing else.`

const mathSystem = `You are a LaTeX expert who transcribes handwritten mathematics into typeset documents.
You will receive a photo or scan of handwritten notes: equations, derivations, matrices, proofs or graphs.

Guidelines:
- Recognise the mathematical structure: equations, aligned steps, fractions, integrals, matrices, cases
- Use amsmath environments (align, gather, cases, pmatrix) and pgfplots/TikZ for sketched graphs
- Fix obvious slips in notation and fill in missing steps so the document reads correctly
- Where handwriting is ambiguous, pick the mathematically consistent reading
- Include every package you use; the output must be a complete document that compiles with pdflatex
- Do not explain the code

Respond with ONLY the LaTeX code, nothing else.`

// textSystemPrompt fills the document type and complexity into the text-path
// instruction. A generate.system.txt in promptDir replaces the built-in text.
func textSystemPrompt(promptDir, documentType, complexity string) string {
	tmpl := util.LoadSystemPrompt(promptDir, "generate", generateSystem)
	return strings.NewReplacer(
		"{document_type}", documentType,
		"{complexity}", complexity,
	).Replace(tmpl)
}

func drawingSystemPrompt(promptDir, mode string) string {
	if mode == ModeMath {
		return util.LoadSystemPrompt(promptDir, ModeMath, mathSystem)
	}
	return util.LoadSystemPrompt(promptDir, ModeEngineering, engineeringSystem)
}

// normalizeMode maps the request's drawing_mode onto a known mode.
func normalizeMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "math", "maths", "mathematics", "handwritten":
		return ModeMath
	default:
		return ModeEngineering
	}
}

func drawingUserText(mode, description string) string {
	var b strings.Builder
	if mode == ModeMath {
		b.WriteString("Convert this handwritten math into a complete LaTeX document.")
	} else {
		b.WriteString("Convert this engineering drawing into a complete LaTeX document.")
	}
	if d := strings.TrimSpace(description); d != "" {
		b.WriteString("\nDescription: ")
		b.WriteString(d)
	}
	return b.String()
}
