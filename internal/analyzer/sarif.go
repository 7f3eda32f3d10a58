package analyzer

import (
	"encoding/json"
	"path/filepath"

	"pycheck/internal/analyzer/detectors"
	"pycheck/internal/models"
)

// Version is reported as the SARIF tool driver version.
var Version = "0.1.0"

// SARIF v2.1.0 schema – see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json
const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"
)

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	FullDescription  *sarifMessage          `json:"fullDescription,omitempty"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
	Fixes     []sarifFix      `json:"fixes,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId,omitempty"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
	EndLine     int `json:"endLine,omitempty"`
	EndColumn   int `json:"endColumn,omitempty"`
}

type sarifFix struct {
	Description     sarifMessage          `json:"description"`
	ArtifactChanges []sarifArtifactChange `json:"artifactChanges"`
}

type sarifArtifactChange struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Replacements     []sarifReplacement    `json:"replacements"`
}

type sarifReplacement struct {
	DeletedRegion   sarifRegion   `json:"deletedRegion"`
	InsertedContent *sarifMessage `json:"insertedContent,omitempty"`
}

// GenerateSARIF builds a SARIF v2.1.0 document from analysis results. File
// URIs are made relative to projectRoot when possible.
func GenerateSARIF(projectRoot string, result *models.AnalysisResult) ([]byte, error) {
	results := make([]sarifResult, 0, len(result.Issues))
	seen := make(map[models.RuleCode]bool)

	for _, issue := range result.Issues {
		seen[issue.Rule] = true
		artifact := sarifArtifactLocation{
			URI:       relativeURI(projectRoot, issue.File),
			URIBaseID: "%SRCROOT%",
		}
		res := sarifResult{
			RuleID:  string(issue.Rule),
			Level:   severityToLevel(issue.Severity),
			Message: sarifMessage{Text: issue.Message},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: artifact,
					Region: &sarifRegion{
						StartLine:   issue.Line,
						StartColumn: issue.Column,
						EndLine:     issue.EndLine,
						EndColumn:   issue.EndColumn,
					},
				},
			}},
		}
		if fix := sarifFixOf(issue, artifact); fix != nil {
			res.Fixes = []sarifFix{*fix}
		}
		results = append(results, res)
	}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "pycheck",
						Version: Version,
						Rules:   buildSARIFRules(seen),
					},
				},
				Results: results,
			},
		},
	}

	return json.MarshalIndent(report, "", "  ")
}

// sarifFixOf converts an issue's fix. Edits without a resolved region are
// dropped since SARIF replacements are line/column based here.
func sarifFixOf(issue models.Issue, artifact sarifArtifactLocation) *sarifFix {
	if !issue.Fixable() || issue.Fix.Applicability == models.ApplicabilityDisplayOnly {
		return nil
	}
	change := sarifArtifactChange{ArtifactLocation: artifact}
	for _, edit := range issue.Fix.Edits {
		if edit.Region == nil {
			continue
		}
		rep := sarifReplacement{
			DeletedRegion: sarifRegion{
				StartLine:   edit.Region.Line,
				StartColumn: edit.Region.Column,
				EndLine:     edit.Region.EndLine,
				EndColumn:   edit.Region.EndColumn,
			},
		}
		if edit.NewText != "" {
			rep.InsertedContent = &sarifMessage{Text: edit.NewText}
		}
		change.Replacements = append(change.Replacements, rep)
	}
	if len(change.Replacements) == 0 {
		return nil
	}
	return &sarifFix{
		Description:     sarifMessage{Text: issue.Fix.Title},
		ArtifactChanges: []sarifArtifactChange{change},
	}
}

// buildSARIFRules returns only the rules that have results.
func buildSARIFRules(seen map[models.RuleCode]bool) []sarifRule {
	rules := make([]sarifRule, 0, len(seen))
	for _, rule := range detectors.Rules() {
		if !seen[rule.Code] {
			continue
		}
		sr := sarifRule{
			ID:               string(rule.Code),
			Name:             rule.Name,
			ShortDescription: sarifMessage{Text: rule.Summary},
			DefaultConfig:    sarifRuleDefaultConfig{Level: severityToLevel(rule.Severity)},
		}
		if rule.Explanation != "" {
			sr.FullDescription = &sarifMessage{Text: rule.Explanation}
		}
		rules = append(rules, sr)
	}
	return rules
}

// relativeURI converts a file path to a forward-slash URI relative to
// projectRoot.
func relativeURI(projectRoot, filePath string) string {
	if projectRoot != "" {
		abs := filePath
		if !filepath.IsAbs(abs) {
			if a, err := filepath.Abs(abs); err == nil {
				abs = a
			}
		}
		if rootAbs, err := filepath.Abs(projectRoot); err == nil {
			if rel, err := filepath.Rel(rootAbs, abs); err == nil {
				filePath = rel
			}
		}
	}
	return filepath.ToSlash(filePath)
}

func severityToLevel(severity models.Severity) string {
	switch severity {
	case models.SeverityError:
		return "error"
	case models.SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}
