package detector

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

// PackageResolver derives module keys from package boundaries on disk.
// Python modules are the chain of directories carrying __init__.py; JavaScript
// and TypeScript modules are named after the nearest package.json.
type PackageResolver struct {
	cache map[string]string
}

// NewPackageResolver creates a resolver with a per-instance lookup cache
func NewPackageResolver() *PackageResolver {
	return &PackageResolver{cache: make(map[string]string)}
}

// ModuleFor returns the module key for path, or domain.RootModuleKey
func (r *PackageResolver) ModuleFor(path string, lang domain.Language) string {
	dir := filepath.Dir(path)
	key := string(lang) + "\x00" + dir
	if cached, ok := r.cache[key]; ok {
		return cached
	}

	var module string
	switch lang {
	case domain.LanguagePython:
		module = pythonModule(dir)
	case domain.LanguageJavaScript, domain.LanguageTypeScript:
		module = nodePackage(dir)
	}
	if module == "" {
		module = domain.RootModuleKey
	}

	r.cache[key] = module
	return module
}

// pythonModule walks up while directories are packages, bounded by MaxDepth
func pythonModule(dir string) string {
	var parts []string
	current := dir
	for i := 0; i < domain.MaxDepth; i++ {
		if _, err := os.Stat(filepath.Join(current, "__init__.py")); err != nil {
			break
		}
		parts = append([]string{filepath.Base(current)}, parts...)
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return strings.Join(parts, ".")
}

// nodePackage finds the nearest package.json and returns its name
func nodePackage(dir string) string {
	current := dir
	for i := 0; i < domain.MaxDepth; i++ {
		manifest := filepath.Join(current, "package.json")
		if data, err := os.ReadFile(manifest); err == nil {
			var pkg struct {
				Name string `json:"name"`
			}
			if json.Unmarshal(data, &pkg) == nil && pkg.Name != "" {
				return pkg.Name
			}
			return filepath.Base(current)
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return ""
}
