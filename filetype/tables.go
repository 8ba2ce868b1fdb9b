// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package filetype

var extensions = map[string][]string{
	"bash":     {"text", "shell", "bash"},
	"bat":      {"text", "batch"},
	"c":        {"text", "c"},
	"cc":       {"text", "c++"},
	"cfg":      {"text"},
	"cpp":      {"text", "c++"},
	"css":      {"text", "css"},
	"csv":      {"text", "csv"},
	"gif":      {"binary", "image", "gif"},
	"go":       {"text", "go"},
	"gz":       {"binary", "gzip"},
	"h":        {"text", "header", "c"},
	"html":     {"text", "html"},
	"ini":      {"text", "ini"},
	"ipynb":    {"text", "jupyter", "json"},
	"java":     {"text", "java"},
	"jpeg":     {"binary", "image", "jpeg"},
	"jpg":      {"binary", "image", "jpeg"},
	"js":       {"text", "javascript"},
	"json":     {"text", "json"},
	"jsx":      {"text", "jsx"},
	"lock":     {"text"},
	"markdown": {"text", "markdown"},
	"md":       {"text", "markdown"},
	"mod":      {"text"},
	"pdf":      {"binary", "pdf"},
	"png":      {"binary", "image", "png"},
	"proto":    {"text", "proto"},
	"py":       {"text", "python"},
	"pyi":      {"text", "pyi"},
	"pyx":      {"text", "cython"},
	"rb":       {"text", "ruby"},
	"rs":       {"text", "rust"},
	"rst":      {"text", "rst"},
	"sh":       {"text", "shell", "sh"},
	"sql":      {"text", "sql"},
	"svg":      {"text", "image", "svg", "xml"},
	"tar":      {"binary", "tar"},
	"templ":    {"text", "templ"},
	"toml":     {"text", "toml"},
	"ts":       {"text", "ts"},
	"tsx":      {"text", "tsx"},
	"txt":      {"text", "plain-text"},
	"txtar":    {"text", "txtar"},
	"xml":      {"text", "xml"},
	"yaml":     {"text", "yaml"},
	"yml":      {"text", "yaml"},
	"zip":      {"binary", "zip"},
	"zsh":      {"text", "shell", "zsh"},
}

var names = map[string][]string{
	".bashrc":                 {"text", "shell", "bash"},
	".dockerignore":           {"text", "dockerignore"},
	".editorconfig":           {"text", "editorconfig"},
	".gitattributes":          {"text", "gitattributes"},
	".gitignore":              {"text", "gitignore"},
	".gitmodules":             {"text", "gitmodules"},
	".pre-commit-config.yaml": {"text", "yaml", "pre-commit-config"},
	".pre-commit-hooks.yaml":  {"text", "yaml", "pre-commit-hooks"},
	".zshrc":                  {"text", "shell", "zsh"},
	"Dockerfile":              {"text", "dockerfile"},
	"LICENSE":                 {"text", "plain-text"},
	"Makefile":                {"text", "makefile"},
	"README":                  {"text", "plain-text"},
	"go.mod":                  {"text", "go-mod"},
	"go.sum":                  {"text", "go-sum"},
	"makefile":                {"text", "makefile"},
	"pyproject.toml":          {"text", "toml", "pyproject"},
	"setup.cfg":               {"text", "ini"},
	"tox.ini":                 {"text", "ini", "tox"},
}

var interpreters = map[string][]string{
	"ash":     {"shell", "ash"},
	"bash":    {"shell", "bash"},
	"dash":    {"shell", "dash"},
	"node":    {"javascript"},
	"perl":    {"perl"},
	"python":  {"python"},
	"python2": {"python", "python2"},
	"python3": {"python", "python3"},
	"ruby":    {"ruby"},
	"sh":      {"shell", "sh"},
	"zsh":     {"shell", "zsh"},
}
