package params

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ServiceReference", "dotnet-svcutil.params.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRead_FullDocument(t *testing.T) {
	path := writeDoc(t, `{
  "providerId": "Microsoft.Tools.ServiceModel.Svcutil",
  "version": "8.0.0",
  "options": {
    "inputs": ["http://x/s?wsdl", "https://y/t?wsdl"],
    "namespaceMappings": ["*, Foo"],
    "outputFile": "Client.cs",
    "references": ["A, {A,1.0}"],
    "targetFramework": "net8.0",
    "typeReuseMode": "None"
  }
}`)

	p, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"http://x/s?wsdl", "https://y/t?wsdl"}, p.Inputs)
	assert.Equal(t, []string{"*, Foo"}, p.NamespaceMappings)
	assert.Equal(t, "Client.cs", p.OutputFile)
	assert.Equal(t, []string{"A, {A,1.0}"}, p.References)
	assert.Equal(t, "net8.0", p.TargetFramework)
	assert.Equal(t, "None", p.TypeReuseMode)
	assert.False(t, p.ReusesAllTypes())
}

func TestRead_Defaults(t *testing.T) {
	path := writeDoc(t, `{"options": {"inputs": ["http://x/s?wsdl"]}}`)

	p, err := Read(path)
	require.NoError(t, err)

	assert.Empty(t, p.NamespaceMappings)
	assert.Equal(t, DefaultOutputFile, p.OutputFile)
	assert.Equal(t, TypeReuseAll, p.TypeReuseMode)
	assert.True(t, p.ReusesAllTypes())
	assert.Empty(t, p.TargetFramework)
	assert.Empty(t, p.References)
}

func TestRead_BlankOptionalFieldsUseDefaults(t *testing.T) {
	path := writeDoc(t, `{"options": {"inputs": [" ", "http://x"], "outputFile": "  ", "typeReuseMode": ""}}`)

	p, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"http://x"}, p.Inputs)
	assert.Equal(t, DefaultOutputFile, p.OutputFile)
	assert.Equal(t, TypeReuseAll, p.TypeReuseMode)
}

func TestRead_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax error", `{"options": {"inputs": [`},
		{"wrong type", `{"options": {"inputs": "http://x"}}`},
		{"null document", `null`},
		{"options not an object", `{"options": 5}`},
		{"array item type", `{"options": {"references": [1, 2]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDoc(t, tt.content)

			p, err := Read(path)
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "expected ParseError, got %T", err)
			assert.Equal(t, path, perr.Path)
			assert.NotEmpty(t, perr.Error())
			assert.Equal(t, GenerationParameters{}, p)
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	var perr *ParseError
	assert.False(t, errors.As(err, &perr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "App", "ServiceReference", "dotnet-svcutil.params.json")
	doc := NewDocument(CreateRequest{
		ServiceURL:      "http://host/Service.svc?wsdl",
		Namespace:       "Contoso.Billing",
		ProjectDir:      "App",
		TargetFramework: "net8.0",
	})

	require.NoError(t, Write(path, doc))

	p, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://host/Service.svc?wsdl"}, p.Inputs)
	assert.Equal(t, []string{"*, Contoso.Billing"}, p.NamespaceMappings)
	assert.Equal(t, "net8.0", p.TargetFramework)
	assert.True(t, p.ReusesAllTypes())
}

func TestWrite_DirectoryCreationFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := Write(filepath.Join(blocker, "ServiceReference", "dotnet-svcutil.params.json"), Document{})
	require.Error(t, err)

	var ferr *FilesystemError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, "create directory", ferr.Op)
}

func TestCreateRequest_Validate(t *testing.T) {
	valid := CreateRequest{
		ServiceURL:      "https://host/Service.svc?wsdl",
		Namespace:       "Contoso.Billing",
		ProjectDir:      "/work/App",
		TargetFramework: "net6.0",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *CreateRequest)
		field  string
	}{
		{"bad url", func(r *CreateRequest) { r.ServiceURL = "not a url" }, "ServiceURL"},
		{"empty url", func(r *CreateRequest) { r.ServiceURL = "" }, "ServiceURL"},
		{"bad namespace", func(r *CreateRequest) { r.Namespace = "1Bad.Name" }, "Namespace"},
		{"unknown framework", func(r *CreateRequest) { r.TargetFramework = "net2.0" }, "TargetFramework"},
		{"missing project", func(r *CreateRequest) { r.ProjectDir = "" }, "ProjectDir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			err := req.Validate()
			require.Error(t, err)

			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Equal(t, tt.field, verrs[0].Field())
		})
	}
}

func TestValidateServiceURL(t *testing.T) {
	assert.NoError(t, ValidateServiceURL("http://host/svc?wsdl"))
	assert.Error(t, ValidateServiceURL("host/svc"))
	assert.Error(t, ValidateServiceURL(""))
}

func TestDefaultNamespace(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"/work/Billing", "Billing.ServiceReference"},
		{"/work/Billing.Api/", "Billing.Api.ServiceReference"},
		{"/work/my-project", "my_project.ServiceReference"},
		{"/work/2024.App", "_2024.App.ServiceReference"},
		{"/", "ServiceReference"},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			got := DefaultNamespace(tt.dir)
			assert.Equal(t, tt.want, got)
			assert.True(t, namespacePattern.MatchString(got))
		})
	}
}

func TestValidateNamespace(t *testing.T) {
	assert.NoError(t, ValidateNamespace("Contoso.Billing"))
	assert.NoError(t, ValidateNamespace("_Internal"))
	assert.Error(t, ValidateNamespace("1Bad"))
	assert.Error(t, ValidateNamespace("Contoso..Billing"))
	assert.Error(t, ValidateNamespace(""))
}
