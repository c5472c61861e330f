package params

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

var namespacePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// CreateRequest collects the answers of the "new service reference" flow.
type CreateRequest struct {
	// ServiceURL is the WSDL location, e.g. http://host/Service.svc?wsdl.
	ServiceURL string `json:"serviceUrl" validate:"required,url"`

	// Namespace is the CLR namespace for generated types.
	Namespace string `json:"namespace" validate:"required,clrnamespace"`

	// ProjectDir is the destination project folder. The document is written
	// to <ProjectDir>/ServiceReference/dotnet-svcutil.params.json.
	ProjectDir string `json:"projectDir" validate:"required"`

	// TargetFramework must be one of Frameworks.
	TargetFramework string `json:"targetFramework" validate:"required,framework"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("clrnamespace", func(fl validator.FieldLevel) bool {
		return namespacePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("framework", func(fl validator.FieldLevel) bool {
		return slices.Contains(Frameworks, fl.Field().String())
	})
	return v
}

// Validate checks the request. The returned error is a
// validator.ValidationErrors when a field is rejected.
func (r *CreateRequest) Validate() error {
	return newValidator().Struct(r)
}

// ValidateServiceURL checks a single URL answer.
func ValidateServiceURL(raw string) error {
	return newValidator().Var(raw, "required,url")
}

// ValidateNamespace checks a single namespace answer.
func ValidateNamespace(ns string) error {
	return newValidator().Var(ns, "required,clrnamespace")
}

// NewDocument builds the params document for a validated request.
func NewDocument(req CreateRequest) Document {
	return Document{
		ProviderID: DefaultProviderID,
		Version:    DefaultToolVersion,
		Options: Options{
			Inputs:            []string{req.ServiceURL},
			NamespaceMappings: []string{"*, " + req.Namespace},
			OutputFile:        DefaultOutputFile,
			TargetFramework:   req.TargetFramework,
			TypeReuseMode:     TypeReuseAll,
		},
	}
}

var namespaceInvalid = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// DefaultNamespace suggests a namespace for a project folder, e.g.
// "Billing.Api" becomes "Billing.Api.ServiceReference".
func DefaultNamespace(projectDir string) string {
	parts := strings.Split(filepath.Base(filepath.Clean(projectDir)), ".")
	out := make([]string, 0, len(parts)+1)
	for _, part := range parts {
		part = namespaceInvalid.ReplaceAllString(part, "_")
		if part == "" || part == "_" {
			continue
		}
		if part[0] >= '0' && part[0] <= '9' {
			part = "_" + part
		}
		out = append(out, part)
	}
	out = append(out, "ServiceReference")
	return strings.Join(out, ".")
}
