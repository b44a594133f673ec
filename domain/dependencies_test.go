package domain_test

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modulePath = "github.com/reglet-dev/skillguard/"

// domainPackages are the packages that make up the authorization core.
var domainPackages = []string{"entities", "errors", "policy", "ports", "rbac"}

// TestDomainHasNoExternalDependencies verifies that the domain layer
// does not import from application or infrastructure layers, and that
// it stays free of third-party imports outside of tests.
func TestDomainHasNoExternalDependencies(t *testing.T) {
	fset := token.NewFileSet()

	for _, pkg := range domainPackages {
		files, err := filepath.Glob(filepath.Join("../domain", pkg, "*.go"))
		require.NoError(t, err, "failed to glob %s files", pkg)

		for _, file := range files {
			if strings.HasSuffix(file, "_test.go") {
				continue
			}
			checkFileImports(t, fset, file, pkg)
		}
	}
}

func checkFileImports(t *testing.T, fset *token.FileSet, filename, pkg string) {
	t.Helper()

	f, err := parser.ParseFile(fset, filename, nil, parser.ImportsOnly)
	require.NoError(t, err, "failed to parse %s", filename)

	forbidden := []string{
		modulePath + "application",
		modulePath + "infrastructure",
		modulePath + "cmd",
		modulePath + "log",
		modulePath + "config",
		modulePath + "internal",
	}

	for _, imp := range f.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)

		for _, bad := range forbidden {
			assert.False(t, strings.HasPrefix(importPath, bad),
				"domain/%s package (%s) must not import %s (violates hexagonal architecture)",
				pkg, filepath.Base(filename), importPath)
		}

		// Domain code may import only the standard library and other domain packages.
		firstElem, _, _ := strings.Cut(importPath, "/")
		if strings.Contains(firstElem, ".") {
			assert.True(t, strings.HasPrefix(importPath, modulePath+"domain/"),
				"domain/%s package (%s) imports non-domain package: %s",
				pkg, filepath.Base(filename), importPath)
		}
	}
}

// TestDomainPackagesExist verifies that required domain packages exist.
func TestDomainPackagesExist(t *testing.T) {
	for _, dir := range domainPackages {
		files, err := filepath.Glob(filepath.Join("../domain", dir, "*.go"))

		require.NoError(t, err, "failed to check %s directory", dir)
		assert.NotEmpty(t, files, "domain/%s should contain Go files", dir)
	}
}
