package params

import "strings"

const (
	// DefaultProviderID is written into newly created documents.
	DefaultProviderID = "Microsoft.Tools.ServiceModel.Svcutil"

	// DefaultToolVersion is the svcutil version recorded in new documents.
	DefaultToolVersion = "8.0.0"

	// DefaultOutputFile is used when a document omits options.outputFile.
	DefaultOutputFile = "Reference.cs"

	// TypeReuseAll keeps type reuse enabled. Any other mode disables it.
	TypeReuseAll = "All"
)

// Frameworks lists the target frameworks offered when creating a document.
var Frameworks = []string{
	"net8.0",
	"net7.0",
	"net6.0",
	"netstandard2.1",
	"netstandard2.0",
	"net48",
	"net472",
}

// Document is the on-disk form of dotnet-svcutil.params.json.
type Document struct {
	ProviderID string  `json:"providerId"`
	Version    string  `json:"version"`
	Options    Options `json:"options"`
}

// Options is the "options" object of a params document.
type Options struct {
	Inputs            []string `json:"inputs"`
	NamespaceMappings []string `json:"namespaceMappings,omitempty"`
	OutputFile        string   `json:"outputFile,omitempty"`
	References        []string `json:"references,omitempty"`
	TargetFramework   string   `json:"targetFramework,omitempty"`
	TypeReuseMode     string   `json:"typeReuseMode,omitempty"`
}

// GenerationParameters is the structured, defaulted form of a params document.
type GenerationParameters struct {
	// Inputs are remote resource identifiers (URLs or local paths).
	Inputs []string `json:"inputs" yaml:"inputs"`

	// NamespaceMappings are "<pattern>, <namespace>" strings.
	NamespaceMappings []string `json:"namespaceMappings" yaml:"namespaceMappings"`

	OutputFile      string   `json:"outputFile" yaml:"outputFile"`
	TargetFramework string   `json:"targetFramework,omitempty" yaml:"targetFramework,omitempty"`
	TypeReuseMode   string   `json:"typeReuseMode" yaml:"typeReuseMode"`
	References      []string `json:"references,omitempty" yaml:"references,omitempty"`
}

// ReusesAllTypes reports whether the type reuse policy is "All".
func (p GenerationParameters) ReusesAllTypes() bool {
	return p.TypeReuseMode == TypeReuseAll
}

// FromDocument applies defaults to a decoded document.
func FromDocument(doc Document) GenerationParameters {
	o := doc.Options
	p := GenerationParameters{
		Inputs:            nonBlank(o.Inputs),
		NamespaceMappings: nonBlank(o.NamespaceMappings),
		OutputFile:        strings.TrimSpace(o.OutputFile),
		TargetFramework:   strings.TrimSpace(o.TargetFramework),
		TypeReuseMode:     strings.TrimSpace(o.TypeReuseMode),
		References:        nonBlank(o.References),
	}
	if p.OutputFile == "" {
		p.OutputFile = DefaultOutputFile
	}
	if p.TypeReuseMode == "" {
		p.TypeReuseMode = TypeReuseAll
	}
	return p
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
