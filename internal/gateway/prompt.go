// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/zld-agent/pkg/types"
)

// engineerPersona is the system instruction for research, analysis and
// scenario design.
const engineerPersona = `You are a Principal ZLD (Zero Liquid Discharge) Process Engineer.
Your expertise includes membrane technologies (RO, NF, FO), thermal processes (MVR, MEE, Crystallizers), and wastewater chemistry.
Your goal is to provide technically accurate, safety-conscious, and economically viable engineering solutions.
Always output specific technical data where possible.`

// consultantPersona is the system instruction for report writing.
const consultantPersona = "You are a professional engineering consultant writing a formal report."

// researchPrompt has no variables: every cycle asks the same question.
const researchPrompt = `Search for the latest research papers, technical articles, and case studies regarding "Zero Liquid Discharge (ZLD) technologies" and "Industrial Wastewater Treatment innovations" published recently.

Based on the search results:
1. Summarize 2-3 key findings or new technologies found.
2. Propose a hypothetical application scenario for these findings (e.g., "Ideally suited for high-COD textile effluent").
3. List the source titles and URLs explicitly.

Output format: Markdown.
Language: Persian (Farsi).`

// maxArticleChars bounds the article text sent for analysis.
const maxArticleChars = 30000

// contextArticles is how many knowledge base articles ground scenario design.
const contextArticles = 3

var analysisPromptTmpl = template.Must(template.New("analysis").Parse(`Analyze the following technical text regarding ZLD (Zero Liquid Discharge).
1. Provide a concise engineering summary (max 150 words).
2. Extract a list of specific technologies or chemicals mentioned.
3. Generate a suitable title if one isn't clear.

Text:
{{.Text}}
`))

var scenarioPromptTmpl = template.Must(template.New("scenario").Parse(`Design 2 distinct ZLD process scenarios for the following water analysis:

Flow Rate: {{.A.FlowRate}} m3/hr
TDS: {{.A.TDS}} mg/L
pH: {{.A.PH}}
COD: {{.A.COD}} mg/L
Chlorides: {{.A.Chlorides}} mg/L
Sulfates: {{.A.Sulfates}} mg/L
Hardness: {{.A.Hardness}} mg/L
Temperature: {{.A.Temp}} C

Consider this learned knowledge:
{{.Context}}

Scenario 1 should focus on OPEX optimization (Low Energy).
Scenario 2 should focus on Robustness (High scaling potential handling).

Return JSON.
`))

var reportPromptTmpl = template.Must(template.New("report").Parse(`Write a formal engineering executive summary report in Markdown format for the selected ZLD Scenario.

Water Data: TDS {{.A.TDS}}, Flow {{.A.FlowRate}}.
Selected Scenario: {{.S.Name}}
Process Steps: {{.Steps}}

The report should include:
1. Basis of Design
2. Process Description
3. Mass Balance Overview (Estimated)
4. Economic Analysis (CAPEX/OPEX qualitative assessment)
5. Conclusion

Language: Persian (Farsi).
`))

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func renderAnalysisPrompt(text string) (string, error) {
	if r := []rune(text); len(r) > maxArticleChars {
		text = string(r[:maxArticleChars])
	}
	return render(analysisPromptTmpl, struct{ Text string }{text})
}

// knowledgeContext formats up to contextArticles articles, newest first,
// as prompt context.
func knowledgeContext(articles []types.Article) string {
	if len(articles) > contextArticles {
		articles = articles[:contextArticles]
	}
	parts := make([]string, 0, len(articles))
	for _, a := range articles {
		parts = append(parts, fmt.Sprintf("Article: %s\nKey Tech: %s\nSummary: %s",
			a.Title, strings.Join(a.KeyTechnologies, ", "), a.Summary))
	}
	return strings.Join(parts, "\n---\n")
}

func renderScenarioPrompt(a types.WaterAnalysis, articles []types.Article) (string, error) {
	return render(scenarioPromptTmpl, struct {
		A       types.WaterAnalysis
		Context string
	}{a, knowledgeContext(articles)})
}

func renderReportPrompt(s types.Scenario, a types.WaterAnalysis) (string, error) {
	names := make([]string, len(s.Steps))
	for i, st := range s.Steps {
		names[i] = st.Name
	}
	return render(reportPromptTmpl, struct {
		A     types.WaterAnalysis
		S     types.Scenario
		Steps string
	}{a, s, strings.Join(names, " -> ")})
}
