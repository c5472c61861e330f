package generator

import (
	"strings"

	"wsdlsync/internal/params"
)

// SubCommand is the first argument passed to the tool.
const SubCommand = "svcutil"

// BuildArgs returns the tool arguments for p in a fixed order: inputs,
// namespace mappings, output file, output directory, target framework,
// type reuse flag, references.
func BuildArgs(p params.GenerationParameters) []string {
	args := []string{SubCommand}
	args = append(args, p.Inputs...)

	for _, mapping := range p.NamespaceMappings {
		args = append(args, "-n", mapping)
	}
	if p.OutputFile != "" {
		args = append(args, "-o", p.OutputFile)
	}

	// Pin the output directory to the working directory, otherwise svcutil
	// nests another ServiceReference folder.
	args = append(args, "-d", ".")

	if p.TargetFramework != "" {
		args = append(args, "-tf", p.TargetFramework)
	}
	if !p.ReusesAllTypes() {
		args = append(args, "-ntr")
	}
	for _, ref := range p.References {
		args = append(args, "-r", ref)
	}
	return args
}

// CommandLine renders args as a single shell-like line. Arguments containing
// whitespace or quotes are double-quoted.
func CommandLine(args []string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = quote(a)
	}
	return strings.Join(parts, " ")
}

func quote(a string) string {
	if a != "" && !strings.ContainsAny(a, " \t\n\"'") {
		return a
	}
	return `"` + strings.ReplaceAll(a, `"`, `\"`) + `"`
}
