package preview

import (
	"encoding/base64"
	"strings"

	"github.com/brettbedarf/previewfs/resolver"
)

// emptyModuleURL stands in for stylesheets imported with bindings
const emptyModuleURL = "data:text/javascript,export default {}"

// moduleURL encodes compiled code as a self-contained module URL
func moduleURL(code string) string {
	return "data:text/javascript;base64," + base64.StdEncoding.EncodeToString([]byte(code))
}

// rewriteModule points every project-module reference in compiled code at its
// import-map key and drops side-effect stylesheet imports, whose rules are
// already part of the document styles. Library references and unresolved
// specifiers are left as written.
func rewriteModule(importer, code string, im *resolver.ImportMap) string {
	var b strings.Builder
	b.Grow(len(code))
	last := 0

	for _, imp := range resolver.ScanImports(code) {
		if imp.TypeOnly {
			continue
		}
		res, ok := im.Lookup(importer, imp.Specifier)
		if !ok {
			continue
		}
		switch res.Kind {
		case resolver.KindLocal:
			b.WriteString(code[last:imp.Start])
			b.WriteString(escapeSpecifier(resolver.ModuleKey(res.Target), code[imp.Start-1]))
			last = imp.End
		case resolver.KindStyle:
			if imp.Kind == resolver.ImportSideEffect {
				b.WriteString(code[last:imp.StmtStart])
				last = imp.StmtEnd
			} else {
				b.WriteString(code[last:imp.Start])
				b.WriteString(emptyModuleURL)
				last = imp.End
			}
		}
	}
	b.WriteString(code[last:])
	return b.String()
}

// escapeSpecifier escapes s for a JS string literal delimited by quote
func escapeSpecifier(s string, quote byte) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, string(quote), `\`+string(quote))
}
